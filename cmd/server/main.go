// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/bandplayer/internal/api/connect"
	"github.com/osa030/bandplayer/internal/app/catalogsource"
	"github.com/osa030/bandplayer/internal/app/notification"
	"github.com/osa030/bandplayer/internal/app/playback"
	"github.com/osa030/bandplayer/internal/app/session"
	"github.com/osa030/bandplayer/internal/domain/catalog"
	"github.com/osa030/bandplayer/internal/infra/config"
	"github.com/osa030/bandplayer/internal/infra/logger"
	"github.com/osa030/bandplayer/internal/infra/spotify"
)

var (
	app        = kingpin.New("bandplayer-server", "Band site track player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// catalog command
	catalogCmd = app.Command("catalog", "Load and print the catalog, then exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		zlog.Error().Msgf("Failed to load catalog: %v", err)
		os.Exit(1)
	}

	// Handle catalog command
	if command == catalogCmd.FullCommand() {
		printCatalog(cat)
		return
	}

	// Run server (defer ensures cleanup runs)
	if err := run(ctx, cfg, cat); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) error {
	// Create session manager
	sessionMgr := session.NewManager(cat, session.Config{
		Playback: playback.Config{
			TickInterval:  cfg.TickInterval(),
			InitialVolume: cfg.Playback.InitialVolume,
			EventBuffer:   cfg.Playback.EventBuffer,
			Ticker:        playback.WallClockTicker,
		},
		IdleTimeout:   cfg.IdleTimeout(),
		SweepInterval: cfg.SweepInterval(),
		MaxSessions:   cfg.Session.MaxSessions,
	}, notification.NewManager())

	// Create RPC services
	playerService := apiconnect.NewPlayerService(sessionMgr)
	adminService := apiconnect.NewAdminService(sessionMgr)
	loggingInterceptor := apiconnect.NewLoggingInterceptor()

	// Create HTTP mux
	mux := http.NewServeMux()

	// Register services
	playerPath, playerHandler := apiconnect.NewPlayerServiceHandler(
		playerService,
		connect.WithInterceptors(loggingInterceptor),
	)
	mux.Handle(playerPath, playerHandler)

	if cfg.Admin.Token != "" {
		adminAuthInterceptor := apiconnect.NewAdminAuthInterceptor(cfg.Admin.Token)
		adminPath, adminHandler := apiconnect.NewAdminServiceHandler(
			adminService,
			connect.WithInterceptors(loggingInterceptor, adminAuthInterceptor),
		)
		mux.Handle(adminPath, adminHandler)
	} else {
		zlog.Info().Msg("Admin token not configured, admin service disabled")
	}

	// Create server with h2c (HTTP/2 cleartext) support
	serverAddr := cfg.Server.Addr
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)

	// Sweep idle sessions
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sessionMgr.Run(sweepCtx)

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s album=%s tracks=%d", serverAddr, cat.Album(), cat.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		sessionMgr.Close()
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Close session manager first to end active watch streams
	stopSweep()
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// loadCatalog builds the catalog from the configured source. Remote sources
// are retried so a transient error at startup does not stop the server.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	var albums catalogsource.AlbumClient
	if cfg.Catalog.Source.Type == "spotify" {
		client, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Spotify client: %w", err)
		}
		albums = client
	}

	source, err := catalogsource.NewFromConfig(cfg, albums)
	if err != nil {
		return nil, err
	}

	maxRetries := 5
	baseDelay := 1 * time.Second

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			delay := baseDelay * time.Duration(1<<uint(i-1))
			zlog.Info().Msgf("Retrying %s catalog load in %v...", source.Name(), delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		cat, err := source.Load(ctx)
		if err == nil {
			zlog.Info().Msgf("Catalog loaded: source=%s album=%s artist=%s %s",
				source.Name(), cat.Album(), cat.Artist(), cat.Summary())
			return cat, nil
		}
		lastErr = err
		zlog.Warn().Msgf("Failed to load catalog (attempt %d/%d): %v", i+1, maxRetries, err)

		// Static catalogs fail the same way every time
		if source.Name() == "static" {
			break
		}
	}
	return nil, fmt.Errorf("catalog load failed: %w", lastErr)
}

// printCatalog prints the catalog in playback order.
func printCatalog(cat *catalog.Catalog) {
	fmt.Printf("%s - %s\n", cat.Artist(), cat.Album())
	fmt.Printf("%s\n", cat.Summary())
	for _, t := range cat.Tracks() {
		fmt.Printf("  %s  %-30s %6s  [id: %s]\n", t.NumberLabel(), t.Title, t.Duration, t.ID)
	}
}
