// Package main is the entry point for the SwipeDeck player backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gsilva87/swipedeck/internal/config"
	"github.com/gsilva87/swipedeck/internal/domain/library"
	"github.com/gsilva87/swipedeck/internal/infra/mpdtransport"
	"github.com/gsilva87/swipedeck/internal/transport/socketio"
	"github.com/gsilva87/swipedeck/internal/version"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	port := flag.String("port", "", "HTTP server port (overrides config)")
	mediaDir := flag.String("media-dir", "", "Additional media directory to scan")
	staticDir := flag.String("static", "", "Directory to serve static files from (optional)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *mediaDir != "" {
		cfg.MediaDirs = append(cfg.MediaDirs, *mediaDir)
	}

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Gesture-Driven Media Player Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", cfg.Server.Port).
		Str("mpd_host", cfg.MPD.Host).
		Int("mpd_port", cfg.MPD.Port).
		Strs("media_dirs", cfg.MediaDirs).
		Msg("Configuration")

	// Build the media library
	lib := library.NewService()
	lib.ScanDirs(cfg.MediaDirs)

	// Create MPD transport for audio sessions. A dead MPD is not fatal:
	// video sessions run without it and the transport reconnects on demand.
	mpd := mpdtransport.New(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
	if err := mpd.Connect(); err != nil {
		log.Warn().Err(err).Msg("MPD unreachable, audio sessions unavailable until it is")
	}
	defer mpd.Close()

	// Create Socket.io server
	socketServer, err := socketio.NewServer(cfg, lib, mpd)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	// Setup HTTP server
	mux := http.NewServeMux()

	// Socket.io endpoint
	mux.Handle("/socket.io/", socketServer)

	// Health check
	mux.HandleFunc("/health", healthHandler(mpd))

	// Version endpoint
	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Library listing (REST fallback for surfaces without a socket yet)
	mux.HandleFunc("/api/v1/library", func(w http.ResponseWriter, r *http.Request) {
		resp := lib.List(library.ListRequest{
			Kind:  library.MediaKind(r.URL.Query().Get("kind")),
			Query: r.URL.Query().Get("query"),
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	// Serve static files if directory specified (SPA mode)
	if *staticDir != "" {
		log.Info().Str("dir", *staticDir).Msg("Serving static files")
		fs := http.FileServer(http.Dir(*staticDir))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// Check if the file exists
			path := *staticDir + r.URL.Path
			if r.URL.Path == "/" {
				path = *staticDir + "/index.html"
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				// For SPA routing, serve index.html for non-existing paths
				http.ServeFile(w, r, *staticDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	// Start HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+cfg.Server.Port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}

// healthHandler reports process liveness and the MPD link state. A dead MPD
// is not an error: video sessions keep working without it.
func healthHandler(mpd *mpdtransport.Transport) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mpdStatus := "connected"
		if err := mpd.Ping(); err != nil {
			mpdStatus = "disconnected"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"mpd":    mpdStatus,
		})
	}
}
