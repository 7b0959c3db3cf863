package mcp

import (
	"context"
	"net"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/sessionmcp/internal/log"
	"github.com/koopa0/sessionmcp/internal/queue"
)

func TestNewServer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing name",
			cfg:     Config{Version: "1.0.0", Session: &recordingClient{}},
			wantErr: "name",
		},
		{
			name:    "missing version",
			cfg:     Config{Name: "test", Session: &recordingClient{}},
			wantErr: "version",
		},
		{
			name:    "missing session client",
			cfg:     Config{Name: "test", Version: "1.0.0"},
			wantErr: "session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServer(tt.cfg)
			if err == nil {
				t.Fatal("NewServer() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewServer() error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewServer_ToolNames(t *testing.T) {
	server, err := NewServer(testConfig(&recordingClient{}))
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}

	names := server.ToolNames()
	if len(names) != 1 || names[0] != "change_title" {
		t.Errorf("ToolNames() = %v, want [change_title]", names)
	}

	cfg := testConfig(&recordingClient{})
	cfg.MessageQueue = func() queue.Queue { return nil }
	server, err = NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}

	names = server.ToolNames()
	if len(names) != 2 {
		t.Fatalf("ToolNames() = %v, want [change_title inject_reminder]", names)
	}
}

// startTestServer starts a server on an ephemeral loopback port and
// guarantees teardown.
func startTestServer(t *testing.T, cfg Config) *Handle {
	t.Helper()

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}

	handle, err := server.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	t.Cleanup(handle.Stop)

	return handle
}

func TestStart_HandleShape(t *testing.T) {
	cfg := testConfig(&recordingClient{})
	cfg.MessageQueue = func() queue.Queue { return queue.NewBuffer() }
	handle := startTestServer(t, cfg)

	parsed, err := url.Parse(handle.URL)
	if err != nil {
		t.Fatalf("handle URL %q does not parse: %v", handle.URL, err)
	}

	if parsed.Hostname() != "127.0.0.1" {
		t.Errorf("handle URL host = %q, want 127.0.0.1", parsed.Hostname())
	}
	if parsed.Port() == "" || parsed.Port() == "0" {
		t.Errorf("handle URL port = %q, want nonzero OS-assigned port", parsed.Port())
	}

	if len(handle.ToolNames) != 2 {
		t.Errorf("handle.ToolNames = %v, want both tools", handle.ToolNames)
	}
}

func TestStart_Twice(t *testing.T) {
	server, err := NewServer(testConfig(&recordingClient{}))
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}

	handle, err := server.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	t.Cleanup(handle.Stop)

	if _, err := server.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded, want error")
	}
}

// TestStart_StreamableHTTPRoundTrip drives a real MCP client over the
// loopback HTTP endpoint, end to end.
func TestStart_StreamableHTTPRoundTrip(t *testing.T) {
	buffer := queue.NewBuffer()
	client := &recordingClient{}
	cfg := testConfig(client)
	cfg.MessageQueue = func() queue.Queue { return buffer }
	handle := startTestServer(t, cfg)

	ctx := context.Background()
	mcpClient := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	clientSession, err := mcpClient.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: handle.URL,
	}, nil)
	if err != nil {
		t.Fatalf("Connect() over HTTP unexpected error: %v", err)
	}
	defer func() { _ = clientSession.Close() }()

	listResult, err := clientSession.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools() over HTTP unexpected error: %v", err)
	}
	if len(listResult.Tools) != 2 {
		t.Errorf("ListTools() over HTTP returned %d tools, want 2", len(listResult.Tools))
	}

	callResult, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      "change_title",
		Arguments: map[string]any{"title": "HTTP round trip"},
	})
	if err != nil {
		t.Fatalf("CallTool() over HTTP unexpected error: %v", err)
	}
	if callResult.IsError {
		t.Fatalf("CallTool() over HTTP returned error result: %s", resultText(t, callResult))
	}

	events := client.recorded()
	if len(events) != 1 || events[0].Summary != "HTTP round trip" {
		t.Errorf("session client events = %+v, want one summary %q", events, "HTTP round trip")
	}
}

func TestHandle_Stop_Idempotent(t *testing.T) {
	cfg := testConfig(&recordingClient{})
	cfg.Logger = log.NewNop()

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}

	handle, err := server.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	hostport := strings.TrimSuffix(strings.TrimPrefix(handle.URL, "http://"), "/mcp")

	// Endpoint reachable while listening.
	conn, err := net.DialTimeout("tcp", hostport, time.Second)
	if err != nil {
		t.Fatalf("dial before Stop() failed: %v", err)
	}
	_ = conn.Close()

	handle.Stop()
	handle.Stop() // must be a no-op, not a panic or error

	if conn, err := net.DialTimeout("tcp", hostport, time.Second); err == nil {
		_ = conn.Close()
		t.Error("endpoint still reachable after Stop()")
	}
}
