package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meshcapade/meshcapade-go/client"
	"github.com/meshcapade/meshcapade-go/internal/config"
	"github.com/meshcapade/meshcapade-go/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// rootOptions carries the persistent flags and the resolved configuration
// to every sub-command.
type rootOptions struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
	debug   bool

	cfg *config.Config
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "meshcapade",
		Short:         "Create, inspect and download Meshcapade avatars",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = logger.NewConsole(cmd.ErrOrStderr())

			cfg, err := config.New()
			if err != nil {
				return err
			}
			// Flags override env.
			flags := cmd.Flags()
			if flags.Changed("api-key") {
				cfg.APIKey = opts.apiKey
			}
			if flags.Changed("api-url") {
				cfg.APIURL = opts.apiURL
			}
			if flags.Changed("http-timeout") {
				cfg.HTTPTimeout = opts.timeout
			}
			if flags.Changed("debug") {
				cfg.Debug = opts.debug
			}
			zerolog.SetGlobalLevel(cfg.Level())
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			log.Debug().Str("api_url", cfg.APIURL).Msg("debug logging enabled")
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.apiKey, "api-key", "", "Meshcapade API key (env MESHCAPADE_API_KEY)")
	pf.StringVar(&opts.apiURL, "api-url", client.DefaultBaseURL, "Base URL of the Meshcapade API (env MESHCAPADE_API_URL)")
	pf.DurationVar(&opts.timeout, "http-timeout", 60*time.Second, "Timeout for a single HTTP request (env MESHCAPADE_HTTP_TIMEOUT)")
	pf.BoolVarP(&opts.debug, "debug", "d", false, "Enable verbose debug output including HTTP dumps")

	// Sub-commands
	rootCmd.AddCommand(newCreateFromImagesCmd(opts))
	rootCmd.AddCommand(newCreateFromMeasurementsCmd(opts))
	rootCmd.AddCommand(newCreatePredefinedCmd(opts))
	rootCmd.AddCommand(newCreateEmptyCmd(opts))
	rootCmd.AddCommand(newUploadImageCmd(opts))
	rootCmd.AddCommand(newFitToImagesCmd(opts))
	rootCmd.AddCommand(newGetCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newDownloadCmd(opts))

	return rootCmd
}

// newClient builds an SDK client from the resolved configuration.
func (o *rootOptions) newClient() (*client.Client, error) {
	if o.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return client.New(o.cfg.APIKey,
		client.WithBaseURL(o.cfg.APIURL),
		client.WithHTTPTimeout(o.cfg.HTTPTimeout),
		client.WithDebugLogging(o.cfg.Debug),
	)
}
