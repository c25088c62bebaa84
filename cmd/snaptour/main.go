package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"snaptour/internal/api"
	"snaptour/pkg/audio"
	"snaptour/pkg/cache"
	"snaptour/pkg/cert"
	"snaptour/pkg/chat"
	"snaptour/pkg/config"
	"snaptour/pkg/db"
	"snaptour/pkg/ledger"
	"snaptour/pkg/llm/gemini"
	"snaptour/pkg/logging"
	"snaptour/pkg/mapembed"
	"snaptour/pkg/request"
	"snaptour/pkg/tour"
	"snaptour/pkg/tracker"
	"snaptour/pkg/version"
)

const defaultConfigPath = "configs/snaptour.yaml"

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", defaultConfigPath, "Path to config file")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env supplies GEMINI_API_KEY for local setups; absence is fine
	_ = godotenv.Load(".env.local", ".env")

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		appCfg.LLM.Key = key
	}

	cleanupLogs, err := logging.Init(
		appCfg.Log.Server.Path, appCfg.Log.Server.Level,
		appCfg.Log.Requests.Path, appCfg.Log.Requests.Level,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SnapTour Started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.PruneCache(time.Duration(appCfg.Tour.CacheTTL)); err != nil {
		slog.Warn("Cache pruning failed", "error", err)
	}

	tr := tracker.New()
	respCache := cache.NewSQLiteCache(dbConn)
	reqClient := request.New(respCache, tr,
		time.Duration(appCfg.Request.Timeout),
		appCfg.Request.Retries,
		time.Duration(appCfg.Request.Backoff.BaseDelay),
	)

	aiClient, err := gemini.NewClient(appCfg.LLM, appCfg.Speech.Voice, appCfg.Log.Gemini.Path, tr)
	if err != nil {
		return fmt.Errorf("failed to initialize AI client: %w", err)
	}
	if !aiClient.Configured() {
		slog.Warn("No API key configured, supply one via the frontend or GEMINI_API_KEY")
	}

	led := ledger.New()
	eventsH := api.NewEventsHandler()
	machine := tour.New(aiClient, led,
		tour.WithTransitionHook(eventsH.Broadcast),
		tour.WithCredentialHook(aiClient.ClearCredential),
	)

	player := audio.New()
	chatStore := chat.NewStore(time.Duration(appCfg.Chat.SessionTTL))
	maps := mapembed.New(reqClient, appCfg.Map)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(appCfg.Server.Address,
		api.NewTourHandler(machine, led),
		api.NewAudioHandler(player, machine, appCfg.Speech.SampleRate, appCfg.Speech.Channels),
		api.NewChatHandler(chatStore, aiClient, machine),
		api.NewExtrasHandler(aiClient, machine, machine),
		api.NewCertificateHandler(cert.NewRenderer(), led, aiClient),
		api.NewMapHandler(maps),
		api.NewCredentialHandler(aiClient, appCfg.LLM.Model, appCfg.LLM.Profiles),
		api.NewConfigHandler(appCfg, configPath),
		api.NewStatsHandler(tr, eventsH, led),
		eventsH,
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
