// Package service provides the business logic layer for the autopilot simulator.
//
// The service package implements:
//   - Multi-session game management
//   - Manual driving with relative commands
//   - Autopilot stepping, autodrive runs and route previews
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and saves scenarios.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the simulator engine. Each session owns its engine and, once the autopilot
// is first asked to drive, an autopilot that learns the map from the car's
// camera. Autopilot ticks can be recorded with a telemetry.Recorder.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessionMgr, configMgr,
//		service.WithLogger(logger),
//		service.WithRecorder(writer),
//	)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	run, err := svc.Autodrive(ctx, info.ID, 200)
//
// Sessions are identified by 4-character IDs and run independently.
package service
