package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tabletcanvas/internal/capture"
	"tabletcanvas/internal/config"
	mcpserver "tabletcanvas/internal/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed static
var staticFS embed.FS

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the canvas web UI and MCP endpoint",
	Long: `Serve starts a local HTTP server with an embedded view of the tablet's
web UI, a Capture button that copies the newest screenshot into the
diagrams folder, a small JSON API, and an MCP endpoint at /mcp.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (overrides config)")
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper(viper.GetViper())

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Wire dependencies
	svc := capture.NewService(cfg)
	handler := capture.NewHandler(svc, logger)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(svc)

	// HTTP router
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// REST API endpoints
	mux.HandleFunc("POST /api/capture", handler.Capture)
	mux.HandleFunc("POST /api/capture/upload", handler.CaptureUpload)
	mux.HandleFunc("GET /api/diagrams", handler.ListDiagrams)
	mux.HandleFunc("GET /api/config", handler.GetConfig)

	// HTMX Web UI
	mux.HandleFunc("GET /", handler.HomePage)
	mux.HandleFunc("POST /fragments/capture", handler.CaptureFragment)
	mux.HandleFunc("POST /fragments/upload", handler.UploadFragment)
	mux.HandleFunc("GET /fragments/diagrams", handler.DiagramsFragment)
	mux.HandleFunc("GET /diagrams/{file}", handler.ServeDiagram)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port)
	logger.Info("endpoints available",
		"web", "http://localhost:"+cfg.Port,
		"api", "http://localhost:"+cfg.Port+"/api",
		"mcp", "http://localhost:"+cfg.Port+"/mcp",
	)
	logger.Info("canvas configured",
		"url", cfg.URL,
		"screenshot_dir", cfg.ScreenshotDir,
		"diagram_dir", cfg.DiagramDir,
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	logger.Info("server stopped")
	return nil
}
