package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/autopilot/game/autopilot"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/telemetry"
)

// Step lets the autopilot drive one tick
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.IsGameOver() {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrGameOver)
	}

	decision, drive := s.tick(sess, 1)
	s.persist(sessionID, "step")
	return &StepResult{Decision: decision, Drive: drive}, nil
}

// Autodrive lets the autopilot drive until the game ends, no route is left or
// maxTicks ticks have passed
func (s *gameServiceImpl) Autodrive(ctx context.Context, sessionID string, maxTicks int) (*AutodriveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.IsGameOver() {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrGameOver)
	}

	if maxTicks <= 0 {
		maxTicks = DefaultAutodriveTicks
	}
	maxTicks = min(maxTicks, MaxAutodriveTicks)

	result := &AutodriveResult{
		Decisions: make([]autopilot.Decision, 0, maxTicks),
		Steps:     make([]StepInfo, 0, maxTicks),
	}

loop:
	for result.Ticks < maxTicks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decision, drive := s.tick(sess, result.Ticks+1)
		result.Ticks++
		result.Decisions = append(result.Decisions, decision)
		if decision.Thrashing {
			result.Thrashing++
		}

		switch {
		case !drive.Success:
			result.StopReasonCode = StopBlocked
			break loop
		case drive.Step != nil:
			result.Steps = append(result.Steps, *drive.Step)
		}

		switch {
		case sess.Engine.IsGameOver():
			result.StopReasonCode = gameOverCode(sess.Engine.GetState())
			break loop
		case decision.Fallback:
			result.StopReasonCode = StopNoRoute
			break loop
		}
	}
	if result.StopReasonCode == "" {
		result.StopReasonCode = StopTickLimit
	}

	state := sess.Engine.GetState()
	result.GameState = state
	result.GameOver = state.GameOver
	result.Victory = state.Victory
	result.Message = state.Message

	s.logger.Info("autodrive finished", "session", sessionID, "ticks", result.Ticks,
		"stop", result.StopReasonCode, "thrashing", result.Thrashing)
	s.persist(sessionID, "autodrive")
	return result, nil
}

// Plan previews the route a strategy would take from the car's position without
// driving. It searches on a copy of the autopilot's knowledge with fresh
// strategies so the session's route history is left untouched.
func (s *gameServiceImpl) Plan(ctx context.Context, sessionID, strategy string) (*PlanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}

	if strategy == "" {
		strategy = StrategyGoal
	}
	known := s.autopilotFor(sess).Known()
	known.Merge(sess.Engine.View())

	state := sess.Engine.GetState()
	keys := state.KeySet()
	opts := []planner.Option{planner.WithLavaDamage(sess.Engine.LavaDamage()), planner.WithLogger(s.logger)}
	req := planner.Request{
		Map:         known,
		Orientation: state.Orientation,
		Start:       state.Position,
		Final:       autopilot.Exits(known),
		Keys:        keys,
		NeedHealing: state.Health < autopilot.DefaultHealThreshold,
	}

	var plan planner.Plan
	switch strategy {
	case StrategyGoal:
		req.Intermediate = autopilot.UncollectedKeys(known, keys)
		plan = planner.NewGoalSeekingStrategy(opts...).Search(req)
	case StrategyExplore:
		req.Intermediate = autopilot.Unexplored(known, state.Position)
		plan = planner.NewExplorationStrategy(opts...).Search(req)
	default:
		return nil, fmt.Errorf("%w %q (use %s or %s)", ErrUnknownStrategy, strategy, StrategyGoal, StrategyExplore)
	}

	return &PlanResult{
		Strategy: strategy,
		Goals:    req.Intermediate,
		Finals:   req.Final,
		Plan:     plan,
	}, nil
}

// autopilotFor returns the session's autopilot, building it from the scenario on first use
func (s *gameServiceImpl) autopilotFor(sess *Session) *autopilot.Autopilot {
	if sess.Autopilot == nil {
		state := sess.Engine.GetState()
		sess.Autopilot = autopilot.New(sess.Engine.Knowledge(), state.TotalKeys,
			autopilot.WithMaxHealth(state.MaxHealth),
			autopilot.WithLavaDamage(sess.Engine.LavaDamage()),
			autopilot.WithLogger(s.logger.With("session", sess.ID)),
		)
	}
	return sess.Autopilot
}

// observe builds the autopilot's view of the car from the simulator
func observe(eng *engine.GameEngine) autopilot.Observation {
	state := eng.GetState()
	return autopilot.Observation{
		Position:    state.Position,
		Orientation: state.Orientation,
		Velocity:    state.Velocity,
		Health:      state.Health,
		Keys:        state.KeySet(),
		View:        eng.View(),
	}
}

// tick runs one autopilot decision through the simulator
func (s *gameServiceImpl) tick(sess *Session, idx int) (autopilot.Decision, *DriveResult) {
	decision := s.autopilotFor(sess).Tick(observe(sess.Engine))
	drive := s.execute(sess, idx, string(decision.Command), true)
	s.record(sess, decision, drive)
	return decision, drive
}

func (s *gameServiceImpl) record(sess *Session, decision autopilot.Decision, drive *DriveResult) {
	if s.recorder == nil {
		return
	}
	state := drive.GameState
	err := s.recorder.Record(telemetry.Tick{
		Session:     sess.ID,
		Scenario:    sess.Config.Name,
		Tick:        int32(state.Ticks),
		X:           int32(state.Position.X),
		Y:           int32(state.Position.Y),
		Orientation: string(state.Orientation),
		Health:      int32(state.Health),
		Keys:        int32(len(state.Keys)),
		Mode:        string(decision.Mode),
		Command:     string(decision.Command),
		Throttle:    string(decision.Controls.Throttle),
		Remaining:   int32(len(decision.Remaining)),
		Thrashing:   decision.Thrashing,
		Fallback:    decision.Fallback,
		Success:     drive.Success,
		GameOver:    state.GameOver,
		Victory:     state.Victory,
		UnixMillis:  time.Now().UnixMilli(),
	})
	if err != nil {
		s.logger.Warn("failed to record tick", "session", sess.ID, "error", err)
	}
}
