package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/sessionmcp/internal/queue"
	"github.com/koopa0/sessionmcp/internal/session"
)

// ErrDuplicateTool indicates two tools were registered under the same
// name. This can only happen through a programming error, so it is
// surfaced at construction time and is fatal to startup.
var ErrDuplicateTool = errors.New("duplicate tool name")

// shutdownTimeout bounds how long Stop waits for in-flight exchanges.
const shutdownTimeout = 5 * time.Second

// Config holds session control server configuration.
type Config struct {
	// Name and Version identify the server to MCP clients.
	Name    string
	Version string

	// Logger receives server diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// ListenAddr is the loopback address to bind. Defaults to
	// "127.0.0.1:0" (OS-assigned ephemeral port).
	ListenAddr string

	// Session is the external session client that summary events are
	// forwarded to. Required.
	Session session.Client

	// MessageQueue resolves the live reminder queue at call time.
	// Optional; the inject_reminder tool is registered only when set.
	MessageQueue queue.Accessor

	// DefaultMode is forwarded untouched with every queue push.
	// Optional; defaults to an empty mode.
	DefaultMode queue.Mode
}

// Server is the session control MCP server. The tool set is fixed at
// construction and immutable afterwards.
type Server struct {
	mcpServer   *mcp.Server
	notifier    *session.Notifier
	getQueue    queue.Accessor
	defaultMode queue.Mode
	logger      *slog.Logger
	listenAddr  string
	toolNames   []string

	mu       sync.Mutex
	listener net.Listener
	httpSrv  *http.Server
	started  bool
}

// Handle is what the owning process keeps after Start: the endpoint
// address, the exposed tool names, and a teardown operation.
type Handle struct {
	// URL is the MCP endpoint, always on loopback with a nonzero port.
	URL string

	// ToolNames lists the tools this instance exposes.
	ToolNames []string

	stop func()
}

// Stop releases the network endpoint. Safe to call multiple times;
// calls after the first are no-ops.
func (h *Handle) Stop() {
	h.stop()
}

// NewServer creates a session control server and registers its tools.
// The registry is immutable once this returns.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}

	notifier, err := session.NewNotifier(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("creating session notifier: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	listenAddr := cfg.ListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}

	defaultMode := cfg.DefaultMode
	if defaultMode == nil {
		defaultMode = queue.Mode{}
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		notifier:    notifier,
		getQueue:    cfg.MessageQueue,
		defaultMode: defaultMode,
		logger:      logger,
		listenAddr:  listenAddr,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	return s, nil
}

// ToolNames returns the names of the registered tools.
func (s *Server) ToolNames() []string {
	return slices.Clone(s.toolNames)
}

// trackTool records a tool name, rejecting duplicates.
func (s *Server) trackTool(name string) error {
	if slices.Contains(s.toolNames, name) {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	s.toolNames = append(s.toolNames, name)
	return nil
}

// Start binds the loopback endpoint and begins serving MCP exchanges.
// It returns only after the OS has confirmed the bind, so the handle's
// URL is immediately reachable. The server runs until Handle.Stop is
// called; ctx only scopes startup.
func (s *Server) Start(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, fmt.Errorf("server already started")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", s.listenAddr, err)
	}

	// Stateless: no Mcp-Session-Id is issued per exchange. The known
	// caller's initialization handshake breaks when one is.
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{Stateless: true})

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.Handle("/", handler)

	httpSrv := &http.Server{Handler: mux}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve error", "error", err)
		}
	}()

	s.listener = listener
	s.httpSrv = httpSrv
	s.started = true

	url := fmt.Sprintf("http://%s/mcp", listener.Addr().String())
	s.logger.Info("session control server listening",
		"url", url,
		"tools", s.toolNames)

	var once sync.Once
	stop := func() {
		once.Do(func() { s.shutdown() })
	}

	return &Handle{
		URL:       url,
		ToolNames: s.ToolNames(),
		stop:      stop,
	}, nil
}

// shutdown drains in-flight exchanges and releases the listener.
func (s *Server) shutdown() {
	s.mu.Lock()
	httpSrv := s.httpSrv
	listener := s.listener
	s.httpSrv = nil
	s.listener = nil
	s.mu.Unlock()

	if httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			s.logger.Warn("shutdown error", "error", err)
		}
	}

	if listener != nil {
		// Shutdown already closed it; Close here tolerates the
		// resulting error and covers the httpSrv==nil path.
		_ = listener.Close()
	}

	s.logger.Info("session control server stopped")
}
