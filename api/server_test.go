package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/autopilot/game/config"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/service"
	"github.com/wricardo/mcp-training/autopilot/game/session"
	"github.com/wricardo/mcp-training/autopilot/game/world"
	"github.com/wricardo/mcp-training/autopilot/transport/websocket"
)

// corridorConfig: the key sits in lava two tiles east of the start, the exit
// is south of the corridor's east end.
func corridorConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Corridor",
		Description: "Test corridor",
		Layout: []string{
			"WWWWWWW",
			"WSRR1RW",
			"WWWWWFW",
			"WWWWWWW",
		},
		Legend:           map[string]string{"W": "wall", "R": "road", "S": "start", "F": "finish"},
		StartingHealth:   100,
		MaxHealth:        100,
		LavaDamage:       10,
		ViewRadius:       2,
		StartOrientation: world.East,
		Messages: engine.Messages{
			Welcome:   "Welcome!",
			Victory:   "Escaped with %d keys!",
			Destroyed: "Destroyed!",
		},
	}
}

type testEnv struct {
	server *Server
	hub    *websocket.Hub
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	if err := configs.SaveConfig("corridor", corridorConfig()); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if err := configs.SetDefault("corridor"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}

	hub := websocket.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	svc := service.NewGameService(session.NewManager(), configs)
	return &testEnv{server: NewServer(svc, hub), hub: hub}
}

func makeRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(target); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	w := e.do(t, "POST", "/api/sessions", map[string]string{"config_id": "corridor"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	return info.ID
}

func TestCreateSession(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantConfig string
	}{
		{"with config_id", map[string]string{"config_id": "corridor"}, http.StatusCreated, "corridor"},
		{"with deprecated config_name", map[string]string{"config_name": "corridor"}, http.StatusCreated, "corridor"},
		{"default config", nil, http.StatusCreated, "corridor"},
		{"unknown config", map[string]string{"config_id": "nope"}, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "POST", "/api/sessions", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var info service.SessionInfo
			parseResponse(t, w, &info)
			if len(info.ID) != 4 || info.ConfigName != tt.wantConfig {
				t.Errorf("Unexpected session %s config %s", info.ID, info.ConfigName)
			}
			if info.GameState.Position != (world.Coordinate{X: 1, Y: 2}) {
				t.Errorf("Expected the car on the start, got %v", info.GameState.Position)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	env := setupTestServer(t)
	for range 3 {
		env.createSession(t)
	}

	w := env.do(t, "GET", "/api/sessions?limit=2&sort=created&order=asc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
		Sort     string                 `json:"sort"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 2 || resp.Total != 3 || len(resp.Sessions) != 2 || resp.Sort != "created" {
		t.Errorf("Unexpected listing %+v", resp)
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	env := setupTestServer(t)
	id := env.createSession(t)

	if w := env.do(t, "GET", "/api/sessions/"+id, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w := env.do(t, "DELETE", "/api/sessions/"+id, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 on delete, got %d", w.Code)
	}
	if w := env.do(t, "GET", "/api/sessions/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
	if w := env.do(t, "DELETE", "/api/sessions/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", w.Code)
	}
}

func TestDrive(t *testing.T) {
	env := setupTestServer(t)
	id := env.createSession(t)

	tests := []struct {
		name        string
		session     string
		body        any
		wantStatus  int
		wantSuccess bool
		wantAt      world.Coordinate
	}{
		{"forward", id, map[string]any{"command": "forward"}, http.StatusOK, true, world.Coordinate{X: 2, Y: 2}},
		{"blocked", id, map[string]any{"command": "left"}, http.StatusOK, false, world.Coordinate{X: 2, Y: 2}},
		{"reset then forward", id, map[string]any{"command": "forward", "reset": true}, http.StatusOK, true, world.Coordinate{X: 2, Y: 2}},
		{"missing command", id, map[string]any{}, http.StatusBadRequest, false, world.Coordinate{}},
		{"unknown session", "zzzz", map[string]any{"command": "forward"}, http.StatusNotFound, false, world.Coordinate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "POST", "/api/sessions/"+tt.session+"/drive", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var result service.DriveResult
			parseResponse(t, w, &result)
			if result.Success != tt.wantSuccess || result.GameState.Position != tt.wantAt {
				t.Errorf("Expected success=%v at %v, got %v at %v", tt.wantSuccess, tt.wantAt, result.Success, result.GameState.Position)
			}
			if !tt.wantSuccess && (result.AttemptedTo == nil || result.AttemptedTo.TileType != "wall") {
				t.Errorf("Expected a wall attempt, got %+v", result.AttemptedTo)
			}
		})
	}
}

func TestBulkDrive(t *testing.T) {
	env := setupTestServer(t)
	id := env.createSession(t)

	w := env.do(t, "POST", "/api/sessions/"+id+"/bulk-drive", map[string]any{
		"commands": []string{"forward", "forward", "forward", "forward", "right"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var result service.BulkDriveResult
	parseResponse(t, w, &result)
	if result.MovesExecuted != 5 || result.StopReasonCode != service.StopVictory || !result.GameOver {
		t.Errorf("Expected victory after 5 commands, got %d stop=%s", result.MovesExecuted, result.StopReasonCode)
	}
	if result.KeysGained != 1 || result.EndHealth != 90 {
		t.Errorf("Expected one key for 10 health, got keys+%d health=%d", result.KeysGained, result.EndHealth)
	}

	if w := env.do(t, "POST", "/api/sessions/"+id+"/bulk-drive", "not json"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a bad body, got %d", w.Code)
	}
}

func TestAutopilotEndpoints(t *testing.T) {
	env := setupTestServer(t)
	id := env.createSession(t)

	t.Run("plan", func(t *testing.T) {
		w := env.do(t, "GET", "/api/sessions/"+id+"/plan?strategy=explore", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var result service.PlanResult
		parseResponse(t, w, &result)
		if result.Strategy != service.StrategyExplore || len(result.Plan.Directions) != 3 {
			t.Errorf("Unexpected plan %+v", result)
		}

		if w := env.do(t, "GET", "/api/sessions/"+id+"/plan?strategy=teleport", nil); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for an unknown strategy, got %d", w.Code)
		}
	})

	t.Run("step", func(t *testing.T) {
		w := env.do(t, "POST", "/api/sessions/"+id+"/step", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var result service.StepResult
		parseResponse(t, w, &result)
		if result.Decision.Command != "forward" || !result.Drive.Success {
			t.Errorf("Unexpected step %+v", result.Decision)
		}
	})

	t.Run("autodrive", func(t *testing.T) {
		if w := env.do(t, "POST", "/api/sessions/"+id+"/autodrive", map[string]int{"max_ticks": service.MaxAutodriveTicks + 1}); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for too many ticks, got %d", w.Code)
		}

		w := env.do(t, "POST", "/api/sessions/"+id+"/autodrive", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var result service.AutodriveResult
		parseResponse(t, w, &result)
		if !result.Victory || result.Ticks != 4 {
			t.Errorf("Expected victory in the 4 ticks left, got %d ticks stop=%s", result.Ticks, result.StopReasonCode)
		}
	})

	t.Run("game over conflicts", func(t *testing.T) {
		if w := env.do(t, "POST", "/api/sessions/"+id+"/step", nil); w.Code != http.StatusConflict {
			t.Errorf("Expected status 409 after victory, got %d", w.Code)
		}
	})

	t.Run("reset", func(t *testing.T) {
		w := env.do(t, "POST", "/api/sessions/"+id+"/reset", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp struct {
			State *engine.GameState `json:"state"`
		}
		parseResponse(t, w, &resp)
		if resp.State.GameOver || resp.State.Position != (world.Coordinate{X: 1, Y: 2}) {
			t.Errorf("Expected a fresh game, got %+v", resp.State)
		}
	})
}

func TestGetHistory(t *testing.T) {
	env := setupTestServer(t)
	id := env.createSession(t)
	env.do(t, "POST", "/api/sessions/"+id+"/bulk-drive", map[string]any{"commands": []string{"forward", "none", "forward"}})

	tests := []struct {
		query     string
		wantMoves int
		wantFirst int
		wantNext  bool
	}{
		{"", 3, 3, false},
		{"?order=asc", 3, 1, false},
		{"?page=1&limit=2&order=asc", 2, 1, true},
		{"?page=2&limit=2&order=desc", 1, 1, false},
		{"?page=oops", 3, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(t, "GET", "/api/sessions/"+id+"/history"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var history service.HistoryResponse
			parseResponse(t, w, &history)
			if len(history.Moves) != tt.wantMoves || history.HasNext != tt.wantNext {
				t.Fatalf("Expected %d moves next=%v, got %d next=%v", tt.wantMoves, tt.wantNext, len(history.Moves), history.HasNext)
			}
			if history.Moves[0].MoveNumber != tt.wantFirst {
				t.Errorf("Expected first move #%d, got #%d", tt.wantFirst, history.Moves[0].MoveNumber)
			}
		})
	}

	if w := env.do(t, "GET", "/api/sessions/zzzz/history", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestConfigs(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, "GET", "/api/configs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var configs []service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 1 || configs[0].ConfigID != "corridor" || configs[0].Keys != 1 {
		t.Errorf("Unexpected configs %+v", configs)
	}

	if w := env.do(t, "GET", "/api/configs/corridor.json", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for a .json name, got %d", w.Code)
	}
	if w := env.do(t, "GET", "/api/configs/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	custom := corridorConfig()
	custom.Name = "My Corridor"
	w = env.do(t, "POST", "/api/configs", custom)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created map[string]string
	parseResponse(t, w, &created)
	if created["config_id"] != "my_corridor" {
		t.Errorf("Expected config id my_corridor, got %q", created["config_id"])
	}

	broken := corridorConfig()
	broken.Layout = []string{"WWW", "WSW", "WWW"}
	if w := env.do(t, "POST", "/api/configs", broken); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an unwinnable config, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)
	if w := env.do(t, "GET", "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

// failingService returns fixed errors from the autopilot operations
type failingService struct {
	service.GameService
	err error
}

func (f failingService) Step(ctx context.Context, sessionID string) (*service.StepResult, error) {
	return nil, f.err
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("%w: ab12", service.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("session ab12: %w", service.ErrGameOver), http.StatusConflict},
		{service.ErrUnknownStrategy, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			srv := NewServer(failingService{err: tt.err}, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/step", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body map[string]string
			parseResponse(t, w, &body)
			if body["error"] != tt.err.Error() {
				t.Errorf("Expected error %q, got %q", tt.err.Error(), body["error"])
			}
		})
	}
}

func TestWebSocket(t *testing.T) {
	env := setupTestServer(t)
	id := env.createSession(t)

	ts := httptest.NewServer(env.server)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	t.Run("rejects missing and unknown sessions", func(t *testing.T) {
		if _, resp, err := gorillaws.DefaultDialer.Dial(wsURL, nil); err == nil || resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 without a session")
		}
		if _, resp, err := gorillaws.DefaultDialer.Dial(wsURL+"?session=zzzz", nil); err == nil || resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 for an unknown session")
		}
	})

	t.Run("streams autopilot steps", func(t *testing.T) {
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL+"?session="+id, nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for env.hub.Clients(id) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		resp, err := http.Post(ts.URL+"/api/sessions/"+id+"/step", "application/json", nil)
		if err != nil {
			t.Fatalf("Step request failed: %v", err)
		}
		resp.Body.Close()

		conn.SetReadDeadline(time.Now().Add(time.Second))
		var message websocket.Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		if message.Event != websocket.EventAutopilotStep || message.GameState.Position != (world.Coordinate{X: 2, Y: 2}) {
			t.Errorf("Unexpected message %+v", message)
		}
	})
}
