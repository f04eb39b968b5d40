package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"p9e.in/sitecore/config"
	"p9e.in/sitecore/handlers"
	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/pkg/engine"
	"p9e.in/sitecore/pkg/metrics"
	"p9e.in/sitecore/pkg/store"
	"p9e.in/sitecore/pkg/store/gormstore"
	"p9e.in/sitecore/pkg/store/memstore"
	"p9e.in/sitecore/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := config.InitLogger(settings)
	middleware.SetSecret(settings.JWTSecret)

	log.Info().
		Str("version", Version).
		Str("environment", settings.Environment).
		Str("store", settings.Store).
		Msg("Starting site consistency service")

	st, err := openStore(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}

	m := metrics.New()
	svc := engine.New(st,
		engine.WithLogger(log),
		engine.WithMetrics(m),
	)

	if settings.SeedDemo {
		if err := config.RunAllSeeding(context.Background(), svc); err != nil {
			log.Warn().Err(err).Msg("seeding encountered issues")
		}
	}

	handler := routes.RegisterRoutes(svc, m, log, handlers.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		Store:     settings.Store,
	})

	httpServer := &http.Server{
		Addr:         ":" + settings.Port,
		Handler:      enableCORS(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", settings.Port).Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdown(log, httpServer)
	log.Info().Msg("Server stopped")
}

func openStore(s config.Settings) (store.Store, error) {
	if s.Store == config.StoreMemory {
		ms, err := memstore.New()
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	db, err := config.Connect(s.DSN)
	if err != nil {
		return nil, err
	}
	return gormstore.New(db), nil
}

func shutdown(log zerolog.Logger, srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if config.DB != nil {
		if sqlDB, err := config.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Required CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
