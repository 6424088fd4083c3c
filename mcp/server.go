package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meshcapade/meshcapade-go/client"
	"github.com/meshcapade/meshcapade-go/internal/config"
	"github.com/meshcapade/meshcapade-go/internal/logger"
	"github.com/meshcapade/meshcapade-go/mcp/internal/handlers"
)

// serverConfig holds the MCP-specific settings. Client settings (API key,
// URL, poll defaults) come from internal/config.
// Environment variables are parsed from the MESHCAPADE_MCP_ prefix.
type serverConfig struct {
	ServerName      string        `envconfig:"SERVER_NAME" default:"meshcapade-mcp-server"`
	ServerVersion   string        `envconfig:"SERVER_VERSION" default:"0.1.0"`
	Addr            string        `envconfig:"ADDR" default:":11546"`
	OutputDir       string        `envconfig:"OUTPUT_DIR" default:"./avatars"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	HTTPReadTimeout time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	HTTPIdleTimeout time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"120s"`
	Transport       string        `envconfig:"TRANSPORT" default:"auto"` // auto | stdio | http
}

func loadServerConfig() (*serverConfig, error) {
	var cfg serverConfig
	if err := envconfig.Process(config.Prefix+"_MCP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	switch cfg.Transport {
	case "auto", "stdio", "http":
	default:
		return nil, fmt.Errorf("unsupported MESHCAPADE_MCP_TRANSPORT: %s", cfg.Transport)
	}
	return &cfg, nil
}

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds an MCP server exposing the avatar tools backed by c.
func NewServer(c *client.Client, name, version, outputDir string, dl client.DownloadOptions) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)
	registered := []struct {
		name    string
		handler toolRegisterer
	}{
		{"avatar", handlers.NewAvatarHandler(c, outputDir, dl)},
	}
	for _, r := range registered {
		if err := r.handler.RegisterTools(s); err != nil {
			return nil, fmt.Errorf("register %s tools: %w", r.name, err)
		}
	}
	return s, nil
}

// RunMCPServer starts the MCP server configured from the environment.
func RunMCPServer() error {
	scfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	useStdio := shouldUseStdio(scfg.Transport)
	if useStdio {
		// stdout carries the stdio protocol, so logs go to stderr.
		log.Logger = logger.NewConsole(os.Stderr)
	} else {
		log.Logger = logger.New(scfg.ServerName)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	zerolog.SetGlobalLevel(cfg.Level())

	meshClient, err := client.New(cfg.APIKey,
		client.WithBaseURL(cfg.APIURL),
		client.WithHTTPTimeout(cfg.HTTPTimeout),
		client.WithDebugLogging(cfg.Debug),
	)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to create client")
		return err
	}
	log.Info().Str("api_url", cfg.APIURL).Str("output_dir", scfg.OutputDir).Msg("Client created successfully")

	s, err := NewServer(meshClient, scfg.ServerName, scfg.ServerVersion, scfg.OutputDir,
		client.DownloadOptions{PollInterval: cfg.PollInterval, MaxAttempts: cfg.MaxAttempts})
	if err != nil {
		return err
	}

	if useStdio {
		// Stdio transport (for desktop hosts, launched processes)
		log.Info().Msg("Starting Meshcapade MCP server (stdio transport)")
		defer func() { _ = meshClient.Close() }()
		return server.ServeStdio(s)
	}

	// HTTP transport (for manual/Docker startup)
	log.Info().Str("addr", scfg.Addr).Msg("Starting Meshcapade MCP server (Streamable HTTP)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	srv := &http.Server{
		Addr:        scfg.Addr,
		Handler:     streamSrv,
		ReadTimeout: scfg.HTTPReadTimeout,
		// No write deadline: download_avatar can poll for minutes and SSE
		// streams stay open.
		WriteTimeout: 0,
		IdleTimeout:  scfg.HTTPIdleTimeout,
	}

	shutdownComplete := make(chan struct{})
	go func() {
		defer close(shutdownComplete)
		<-ctx.Done()
		log.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), scfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during HTTP server shutdown")
		}
		if err := streamSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during MCP server shutdown")
		}
		if err := meshClient.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Meshcapade client")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		<-shutdownComplete
		return fmt.Errorf("http server: %w", err)
	}

	<-shutdownComplete
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio resolves the transport. In auto mode stdio is used when
// stdin is not a terminal (launched by another process).
func shouldUseStdio(mode string) bool {
	switch mode {
	case "stdio":
		return true
	case "http":
		return false
	}
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	// Default to HTTP if detection fails
	return false
}
