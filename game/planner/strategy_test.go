package planner

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

func TestGoalSeekingStrategy_Thrashing(t *testing.T) {
	m := parseGrid(t, ".....")
	s := NewGoalSeekingStrategy()
	req := Request{Map: m, Orientation: world.East, Start: coord(2, 0), Keys: world.NewKeySet()}

	req.Intermediate = coords(0, 0)
	left := s.Search(req)
	assertCoords(t, left.Path.Coords, coords(2, 0, 1, 0, 0, 0))
	if left.Thrashing {
		t.Fatal("first search cannot thrash")
	}
	if len(left.Directions) != 2 || left.Directions[0] != Backward || left.Directions[1] != Forward {
		t.Errorf("expected [backward forward], got %v", left.Directions)
	}

	req.Intermediate = coords(4, 0)
	right := s.Search(req)
	assertCoords(t, right.Path.Coords, coords(2, 0, 3, 0, 4, 0))

	req.Intermediate = coords(0, 0)
	again := s.Search(req)
	if !again.Thrashing {
		t.Fatal("expected thrashing when the left route comes back")
	}
	assertCoords(t, again.Path.Coords, right.Path.Coords)
	assertCoords(t, again.Searched.Coords, left.Path.Coords)
	assertCoords(t, s.Path().Coords, right.Path.Coords)
	if len(again.Directions) != 2 || again.Directions[0] != Forward || again.Directions[1] != Forward {
		t.Errorf("expected [forward forward], got %v", again.Directions)
	}
}

func TestGoalSeekingStrategy_Goals(t *testing.T) {
	m := parseGrid(t,
		".....",
		".....",
		".....",
	)

	t.Run("no goals", func(t *testing.T) {
		s := NewGoalSeekingStrategy()
		plan := s.Search(Request{Map: m, Orientation: world.North, Start: coord(0, 0)})
		if !plan.Empty() || len(plan.Directions) != 0 {
			t.Errorf("expected an empty plan, got %+v", plan)
		}
		if s.Directions() == nil {
			t.Error("expected a non-nil direction slice")
		}
	})

	t.Run("nearest final without intermediate goals", func(t *testing.T) {
		s := NewGoalSeekingStrategy()
		plan := s.Search(Request{
			Map:         m,
			Orientation: world.North,
			Start:       coord(0, 0),
			Final:       coords(4, 2, 1, 1),
		})
		if goal, _ := plan.Path.Goal(); goal != coord(1, 1) {
			t.Errorf("expected the nearest exit (1,1), got %v", goal)
		}
		assertWellFormed(t, plan.Path, coord(0, 0), coord(1, 1))
	})

	t.Run("searches only the top ranked candidate", func(t *testing.T) {
		s := NewGoalSeekingStrategy()
		intermediate := coords(4, 0, 0, 2)
		plan := s.Search(Request{
			Map:          m,
			Orientation:  world.North,
			Start:        coord(0, 0),
			Intermediate: intermediate,
			Final:        coords(4, 2),
		})
		if goal, _ := plan.Path.Goal(); goal != coord(0, 2) {
			t.Errorf("expected (0,2), got %v", goal)
		}
		assertCoords(t, intermediate, coords(4, 0, 0, 2))
	})

	t.Run("unreachable goal", func(t *testing.T) {
		walled := parseGrid(t,
			"..###",
			"..#.#",
			"..###",
		)
		s := NewGoalSeekingStrategy()
		plan := s.Search(Request{
			Map:          walled,
			Orientation:  world.North,
			Start:        coord(0, 0),
			Intermediate: coords(3, 1),
		})
		if !plan.Empty() || len(plan.Directions) != 0 || len(s.Directions()) != 0 {
			t.Errorf("expected no route, got %+v", plan)
		}
	})
}

func TestRankGoals(t *testing.T) {
	candidates := coords(2, 0, 5, 5, 0, 2)
	got := RankGoals(coord(0, 0), candidates, coords(10, 0))

	// (0,2) and (2,0) are equally near; (0,2) is farther from the exit
	assertCoords(t, got, coords(0, 2, 2, 0, 5, 5))
	assertCoords(t, candidates, coords(2, 0, 5, 5, 0, 2))

	if got := RankGoals(coord(0, 0), coords(3, 0, 1, 0), nil); got[0] != coord(1, 0) {
		t.Errorf("expected nearest candidate first without exits, got %v", got)
	}
}

func TestExplorationStrategy(t *testing.T) {
	m := parseGrid(t,
		".  ",
		".L.",
		".  ",
	)
	start := coord(0, 1)

	tests := []struct {
		name         string
		intermediate []world.Coordinate
		final        []world.Coordinate
		wantGoal     world.Coordinate
		wantDamage   int
	}{
		{"lower damage wins", coords(2, 1, 0, 2), nil, coord(0, 2), 0},
		{"equal damage keeps first", coords(0, 2, 0, 0), nil, coord(0, 2), 0},
		{"equal damage keeps first reversed", coords(0, 0, 0, 2), nil, coord(0, 0), 0},
		{"unreachable candidates skipped", coords(9, 9, 2, 1), nil, coord(2, 1), DefaultLavaDamage},
		{"nearest final without candidates", nil, coords(2, 1, 0, 0), coord(0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewExplorationStrategy()
			plan := s.Search(Request{
				Map:          m,
				Orientation:  world.North,
				Start:        start,
				Intermediate: tt.intermediate,
				Final:        tt.final,
			})
			goal, ok := plan.Path.Goal()
			if !ok {
				t.Fatal("expected a route")
			}
			if goal != tt.wantGoal {
				t.Errorf("expected goal %v, got %v", tt.wantGoal, goal)
			}
			if plan.Path.Damage != tt.wantDamage {
				t.Errorf("expected damage %d, got %d", tt.wantDamage, plan.Path.Damage)
			}
			if len(plan.Directions) != plan.Path.Len()-1 {
				t.Errorf("expected %d directions, got %d", plan.Path.Len()-1, len(plan.Directions))
			}
		})
	}

	t.Run("nothing reachable", func(t *testing.T) {
		s := NewExplorationStrategy()
		plan := s.Search(Request{Map: m, Orientation: world.North, Start: start, Intermediate: coords(9, 9)})
		if !plan.Empty() || len(plan.Directions) != 0 {
			t.Errorf("expected an empty plan, got %+v", plan)
		}
	})

	t.Run("custom lava damage", func(t *testing.T) {
		s := NewExplorationStrategy(WithLavaDamage(12))
		plan := s.Search(Request{Map: m, Orientation: world.North, Start: start, Intermediate: coords(2, 1)})
		if plan.Path.Damage != 12 {
			t.Errorf("expected damage 12, got %d", plan.Path.Damage)
		}
	})
}

func TestStrategy_ReturnsCopies(t *testing.T) {
	m := parseGrid(t, "....")
	s := NewExplorationStrategy()
	plan := s.Search(Request{Map: m, Orientation: world.East, Start: coord(0, 0), Intermediate: coords(3, 0)})

	plan.Path.Coords[0] = coord(8, 8)
	plan.Directions[0] = Backward

	if s.Path().Coords[0] != coord(0, 0) {
		t.Error("plan path aliases strategy state")
	}
	if s.Directions()[0] != Forward {
		t.Error("plan directions alias strategy state")
	}
	if s.History()[0].Coords[0] != coord(0, 0) {
		t.Error("plan path aliases history")
	}

	s.Reset()
	if len(s.History()) != 0 || !s.Path().Empty() {
		t.Error("expected Reset to clear state")
	}
}

func TestStrategy_InvalidPathPanics(t *testing.T) {
	tr := newTracker("test", buildOptions(nil))
	defer func() {
		if recover() == nil {
			t.Error("expected a panic on a non-adjacent path")
		}
	}()
	tr.finish(pathOf(0, 0, 2, 0), world.North)
}

func TestStrategy_InvalidOrientation(t *testing.T) {
	m := parseGrid(t, ".....")
	strategies := map[string]interface {
		Strategy
		History() []Path
	}{
		"goal-seeking": NewGoalSeekingStrategy(),
		"exploration":  NewExplorationStrategy(),
	}

	for name, s := range strategies {
		t.Run(name, func(t *testing.T) {
			for _, heading := range []world.Orientation{"", "up"} {
				plan := s.Search(Request{
					Map:          m,
					Orientation:  heading,
					Start:        coord(0, 0),
					Intermediate: coords(2, 0),
					Final:        coords(4, 0),
					Keys:         world.NewKeySet(),
				})
				if !plan.Empty() || len(plan.Directions) != 0 {
					t.Errorf("heading %q: expected an empty plan, got %+v", heading, plan)
				}
			}
			if len(s.History()) != 0 {
				t.Errorf("expected nothing recorded, got %d paths", len(s.History()))
			}

			plan := s.Search(Request{
				Map:          m,
				Orientation:  world.East,
				Start:        coord(0, 0),
				Intermediate: coords(2, 0),
				Final:        coords(4, 0),
				Keys:         world.NewKeySet(),
			})
			assertCoords(t, plan.Path.Coords, coords(0, 0, 1, 0, 2, 0))
		})
	}
}

func TestStrategy_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := parseGrid(t, ".....")
	s := NewGoalSeekingStrategy(WithLogger(logger))
	req := Request{Map: m, Orientation: world.East, Start: coord(2, 0)}

	for _, goal := range []world.Coordinate{coord(0, 0), coord(4, 0), coord(0, 0)} {
		req.Intermediate = []world.Coordinate{goal}
		s.Search(req)
	}

	out := buf.String()
	if !strings.Contains(out, "path recorded") {
		t.Errorf("expected a recorded path log, got %q", out)
	}
	if !strings.Contains(out, "thrashing detected") {
		t.Errorf("expected a thrashing log, got %q", out)
	}
	if !strings.Contains(out, "strategy=goal-seeking") {
		t.Errorf("expected the strategy name attribute, got %q", out)
	}
}
