package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/autopilot/api"
	"github.com/wricardo/mcp-training/autopilot/game/config"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/service"
	"github.com/wricardo/mcp-training/autopilot/game/session"
	"github.com/wricardo/mcp-training/autopilot/game/world"
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

// newTestClient starts the REST API over a real service and returns a client proxying to it
func newTestClient(t *testing.T) *Client {
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

	svc := service.NewGameService(session.NewManager(), configs)
	srv := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]any) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content, got %T", name, result.Content[0])
	}
	return text.Text, result.IsError
}

func createSession(t *testing.T, c *Client) string {
	t.Helper()
	var info service.SessionInfo
	if err := c.apiCall(context.Background(), http.MethodPost, "/api/sessions", map[string]string{}, &info); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info.ID
}

func assertContains(t *testing.T, text string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(text, w) {
			t.Errorf("Expected %q in output, got:\n%s", w, text)
		}
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_ToolsList(t *testing.T) {
	client := NewClient("http://localhost:8080")
	srv := client.GetMCPServer()
	ctx := context.Background()

	srv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`))
	response := srv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	for _, tool := range []string{
		"create_session", "list_sessions", "get_session", "game_state",
		"drive", "bulk_drive", "reset_game", "move_history",
		"step", "autodrive", "plan",
		"list_configs", "game_instructions", "describe_cell",
	} {
		if !strings.Contains(string(data), `"name":"`+tool+`"`) {
			t.Errorf("Tool %s not registered", tool)
		}
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
			}
			json.NewEncoder(w).Encode(map[string]int{"health": 75})
		case "/bad":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	var result struct {
		Health int `json:"health"`
	}
	if err := client.apiCall(ctx, http.MethodPost, "/ok", map[string]string{"a": "b"}, &result); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if result.Health != 75 {
		t.Errorf("Expected health 75, got %d", result.Health)
	}

	err := client.apiCall(ctx, http.MethodGet, "/bad", nil, nil)
	if err == nil || err.Error() != "session not found" {
		t.Errorf("Expected API error message, got %v", err)
	}

	err = client.apiCall(ctx, http.MethodGet, "/boom", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error: 500") {
		t.Errorf("Expected status fallback error, got %v", err)
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	if err := client.apiCall(context.Background(), http.MethodGet, "/api/sessions", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_Sessions(t *testing.T) {
	client := newTestClient(t)

	text, isErr := callTool(t, client.handleCreateSession, "create_session", map[string]any{})
	if isErr {
		t.Fatalf("create_session failed: %s", text)
	}
	assertContains(t, text, "Created session:", "Position: (1,2) facing east", "Health: 100/100", "Keys: 0/1")

	id := createSession(t, client)

	text, _ = callTool(t, client.handleListSessions, "list_sessions", map[string]any{})
	assertContains(t, text, "Active Sessions (2)", id, "running")

	text, isErr = callTool(t, client.handleGetSession, "get_session", map[string]any{"session_id": id})
	if isErr {
		t.Fatalf("get_session failed: %s", text)
	}
	assertContains(t, text, "Session: "+id, "WCRR1RW")

	text, isErr = callTool(t, client.handleCreateSession, "create_session", map[string]any{"config_name": "missing"})
	if !isErr {
		t.Errorf("Expected error for unknown config, got: %s", text)
	}
}

func TestClient_Drive(t *testing.T) {
	client := newTestClient(t)
	id := createSession(t, client)

	tests := []struct {
		name    string
		command string
		isErr   bool
		want    []string
	}{
		{"forward", "forward", false, []string{"✓ Command executed", "(1,2)→(2,2)", "Position: (2,2) facing east"}},
		{"left into wall", "left", false, []string{"✗ Command failed", "Blocked: attempted (2,3) tile=W"}},
		{"unknown command", "jump", false, []string{"✗ Command failed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callTool(t, client.handleDrive, "drive", map[string]any{
				"session_id": id,
				"command":    tt.command,
				"intent":     "testing",
			})
			if isErr != tt.isErr {
				t.Fatalf("Expected isError=%v, got %v: %s", tt.isErr, isErr, text)
			}
			assertContains(t, text, tt.want...)
		})
	}

	text, isErr := callTool(t, client.handleDrive, "drive", map[string]any{"command": "forward"})
	if !isErr {
		t.Errorf("Expected error without session_id, got: %s", text)
	}
}

func TestClient_BulkDrive(t *testing.T) {
	client := newTestClient(t)
	id := createSession(t, client)

	text, isErr := callTool(t, client.handleBulkDrive, "bulk_drive", map[string]any{
		"session_id": id,
		"commands":   []any{"forward", "forward", "forward", "forward", "right"},
		"intent":     "collect the key and leave",
	})
	if isErr {
		t.Fatalf("bulk_drive failed: %s", text)
	}
	assertContains(t, text, "Executed 5/5 commands", "keys gained 1", "tile=1", "VICTORY!")

	text, isErr = callTool(t, client.handleBulkDrive, "bulk_drive", map[string]any{
		"session_id": id,
		"commands":   []any{},
	})
	if !isErr {
		t.Errorf("Expected error for empty commands, got: %s", text)
	}

	text, _ = callTool(t, client.handleReset, "reset_game", map[string]any{"session_id": id})
	assertContains(t, text, "Game reset successfully", "Position: (1,2)")

	text, _ = callTool(t, client.handleMoveHistory, "move_history", map[string]any{
		"session_id": id,
		"page":       float64(1),
		"limit":      float64(2),
	})
	assertContains(t, text, "Move History (Page 1/3, Total: 5)")
}

func TestClient_Autopilot(t *testing.T) {
	client := newTestClient(t)
	id := createSession(t, client)

	text, isErr := callTool(t, client.handlePlan, "plan", map[string]any{"session_id": id, "strategy": "explore"})
	if isErr {
		t.Fatalf("plan failed: %s", text)
	}
	assertContains(t, text, "Strategy: explore", "Commands: forward")

	text, isErr = callTool(t, client.handlePlan, "plan", map[string]any{"session_id": id, "strategy": "teleport"})
	if !isErr {
		t.Errorf("Expected error for unknown strategy, got: %s", text)
	}

	text, isErr = callTool(t, client.handleStep, "step", map[string]any{"session_id": id})
	if isErr {
		t.Fatalf("step failed: %s", text)
	}
	assertContains(t, text, "Autopilot mode: explore, command: forward", "Position: (2,2)")

	text, isErr = callTool(t, client.handleAutodrive, "autodrive", map[string]any{"session_id": id, "max_ticks": float64(20)})
	if isErr {
		t.Fatalf("autodrive failed: %s", text)
	}
	assertContains(t, text, "Autodrive ran 4 ticks, stopped: victory", "VICTORY!")

	text, isErr = callTool(t, client.handleAutodrive, "autodrive", map[string]any{"session_id": id})
	if !isErr {
		t.Errorf("Expected error when driving a finished game, got: %s", text)
	}
}

func TestClient_DescribeCell(t *testing.T) {
	client := newTestClient(t)
	id := createSession(t, client)

	tests := []struct {
		name  string
		x, y  float64
		isErr bool
		want  []string
	}{
		{"car", 1, 2, false, []string{"Character: S", "The car is here, facing east"}},
		{"key lava", 4, 2, false, []string{"Character: 1", "Passable: true", "key 1"}},
		{"wall", 0, 0, false, []string{"Character: W", "Passable: false"}},
		{"finish", 5, 1, false, []string{"Character: F", "Opens once every key is held"}},
		{"out of bounds", 9, 9, true, []string{"out of bounds", "Grid is 7x4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callTool(t, client.handleDescribeCell, "describe_cell", map[string]any{
				"session_id": id, "x": tt.x, "y": tt.y,
			})
			if isErr != tt.isErr {
				t.Fatalf("Expected isError=%v, got %v: %s", tt.isErr, isErr, text)
			}
			assertContains(t, text, tt.want...)
		})
	}
}

func TestClient_ConfigsAndInstructions(t *testing.T) {
	client := newTestClient(t)

	text, isErr := callTool(t, client.handleListConfigs, "list_configs", map[string]any{})
	if isErr {
		t.Fatalf("list_configs failed: %s", text)
	}
	assertContains(t, text, "Corridor (id: corridor)", "Grid: 7x4, Health: 100, Keys: 1")

	text, _ = callTool(t, client.handleGameInstructions, "game_instructions", map[string]any{})
	assertContains(t, text, "forward", "backward", "autodrive", "LEGEND")
}

func TestClient_UnknownSession(t *testing.T) {
	client := newTestClient(t)

	text, isErr := callTool(t, client.handleGameState, "game_state", map[string]any{"session_id": "nope"})
	if !isErr {
		t.Errorf("Expected error for unknown session, got: %s", text)
	}
	assertContains(t, text, "not found")
}

func TestFormatGameState(t *testing.T) {
	state := &engine.GameState{
		Grid: [][]world.Tile{
			{{Type: world.Wall}, {Type: world.Wall}, {Type: world.Wall}},
			{{Type: world.Start}, {Type: world.Road}, world.LavaTile(2)},
			{{Type: world.Wall}, {Type: world.Finish}, {Type: world.Wall}},
		},
		Position:    world.Coordinate{X: 1, Y: 1},
		Orientation: world.North,
		Health:      40,
		MaxHealth:   50,
		Keys:        []int{1},
		TotalKeys:   2,
		Message:     "Welcome!",
	}

	result := formatGameState(state)
	assertContains(t, result,
		"Position: (1,1) facing north",
		"Health: 40/50",
		"Keys: 1/2",
		"WWW\nSC2\nWFW\n",
		"Message: Welcome!",
	)
	if strings.Contains(result, "GAME OVER") {
		t.Error("Running game should not be reported as over")
	}

	state.GameOver = true
	if !strings.Contains(formatGameState(state), "GAME OVER") {
		t.Error("Expected GAME OVER")
	}
	state.Victory = true
	if !strings.Contains(formatGameState(state), "VICTORY!") {
		t.Error("Expected VICTORY!")
	}
	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}
