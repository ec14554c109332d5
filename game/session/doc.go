// Package session keeps the simulator sessions in memory and, optionally, on disk.
//
// Manager is safe for concurrent use. Session IDs are case-insensitive; an
// empty ID gets a random 4-character one. With a SessionPersistence attached,
// sessions are written on creation and whenever the service saves them, and
// Get falls back to storage for sessions that are not in memory.
//
// FilePersistence stores one JSON document per session: the scenario id, a
// copy of the scenario and the simulator state. The autopilot is not stored;
// a restored session builds a fresh one on the next autopilot request.
//
//	persistence, err := session.NewFilePersistence("sessions", configs)
//	manager := session.NewManagerWithPersistence(persistence, session.WithLogger(logger))
//	go manager.RunJanitor(ctx, time.Minute, 2*time.Hour)
package session
