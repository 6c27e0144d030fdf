// Command bank-branch-game starts the bank branch game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags (each with an environment variable fallback) control host/port, the
// map directory, the movement clock, session expiry, debug logging and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/bank-branch-game/api"
	"github.com/wricardo/bank-branch-game/game/config"
	"github.com/wricardo/bank-branch-game/game/engine"
	"github.com/wricardo/bank-branch-game/game/service"
	"github.com/wricardo/bank-branch-game/game/session"
	"github.com/wricardo/bank-branch-game/transport/mcp"
	"github.com/wricardo/bank-branch-game/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Bank Branch Game Server"
)

const (
	defaultSessionTTL = 24 * time.Hour
	cleanupInterval   = time.Hour
)

// options is the resolved command line configuration
type options struct {
	host         string
	port         int
	configDir    string
	tickInterval time.Duration
	sessionTTL   time.Duration

	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:         cmd.String("host"),
		port:         cmd.Int("port"),
		configDir:    cmd.String("config-dir"),
		tickInterval: cmd.Duration("tick-interval"),
		sessionTTL:   cmd.Duration("session-ttl"),
		ngrokEnabled: cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

// newApp builds the root command. Global flags go before the mode:
//
//	bank-branch-game -port 9090 server
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "bank-branch-game",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing map configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.DurationFlag{
				Name:    "tick-interval",
				Value:   service.DefaultTickInterval,
				Usage:   "How often walks and rejection windows advance",
				Sources: cli.EnvVars("TICK_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   defaultSessionTTL,
				Usage:   "Drop sessions idle for longer than this",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					log.Printf("Starting %s v%s (mode: server)", AppName, Version)
					return runHTTPServer(ctx, optionsFrom(cmd))
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server, with an internal HTTP server when none is running",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					log.Printf("Starting %s v%s (mode: stdio-mcp)", AppName, Version)
					return runStdioMCPWithInternalServer(ctx, optionsFrom(cmd))
				},
			},
		},
	}
}

// main loads .env, then hands the arguments to the root command
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// services bundles everything a running server needs
type services struct {
	sessions *session.Manager
	configs  *config.Manager
	hub      *websocket.Hub
	game     service.GameService
}

// initializeServices wires the config and session managers, the WebSocket hub
// and the game service. Nothing runs until start is called.
func initializeServices(configDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	hub := websocket.NewHub()
	game := service.NewGameService(sessionManager, configManager, hub)
	hub.SetSnapshotSource(func(sessionID string) (*engine.GameSnapshot, error) {
		return game.GetGameState(context.Background(), sessionID)
	})

	return &services{
		sessions: sessionManager,
		configs:  configManager,
		hub:      hub,
		game:     game,
	}, nil
}

// start launches the hub loop, the movement clock and session expiry. All
// three stop when ctx is cancelled; the returned WaitGroup tracks them.
func (s *services) start(ctx context.Context, opts options) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.game.Run(ctx, opts.tickInterval)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, s.sessions, cleanupInterval, opts.sessionTTL)
	}()
	return &wg
}

// newRouter mounts the REST API at the root and the MCP proxy at /mcp
func newRouter(s *services, baseURL string) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(s.game, s.hub))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// mcpHandler answers single MCP JSON-RPC messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts options) error {
	svc, err := initializeServices(opts.configDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	background := svc.start(ctx, opts)

	addr := opts.addr()
	handler := newRouter(svc, "http://"+addr)

	// WriteTimeout stays unset: WebSocket connections are long-lived
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)
		log.Printf("Movement clock: every %v", opts.tickInterval)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if opts.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, handler)
		}()
	}

	var runErr error
	select {
	case sig := <-stop:
		log.Printf("Received signal: %v. Shutting down...", sig)
	case runErr = <-serveErr:
		log.Printf("HTTP server failed: %v", runErr)
	case <-ctx.Done():
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	background.Wait()
	log.Println("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Printf("Using custom ngrok domain: %s", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	// http.Serve only returns once the listener is closed
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// externalServerAvailable reports whether a game server already answers at baseURL
func externalServerAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses a game server already listening on host:port; if there is none, it
// starts an internal HTTP API bound to a random loopback port and targets that.
// Logs go to stderr so stdout stays reserved for the protocol.
func runStdioMCPWithInternalServer(ctx context.Context, opts options) error {
	externalURL := "http://" + opts.addr()
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	if externalServerAvailable(ctx, externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(opts.configDir)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		svc.start(ctx, opts)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		log.Printf("Internal HTTP server on %s for MCP stdio", listener.Addr())
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	return server.ServeStdio(mcpClient.GetMCPServer())
}
