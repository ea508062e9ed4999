package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tansive/nanobanana/internal/common/logtrace"
	"github.com/tansive/nanobanana/internal/gateway/artifact"
	"github.com/tansive/nanobanana/internal/gateway/config"
	"github.com/tansive/nanobanana/internal/gateway/genclient"
	"github.com/tansive/nanobanana/internal/gateway/mcpservice"
	"github.com/tansive/nanobanana/internal/gateway/session"
)

// shutdownGrace bounds how long in-flight HTTP requests may run after a
// shutdown signal.
const shutdownGrace = 5 * time.Second

type serveFlags struct {
	transport string
	listen    string
	outputDir string
	cors      bool
	console   bool
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server. In stdio mode MCP messages are read from stdin and
written to stdout, and logs go to stderr. In http mode JSON-RPC messages are
accepted on POST /mcp.

The Gemini API key is read from api_key in the config file or from the
GEMINI_API_KEY environment variable, optionally set in a .env file.

Examples:
  # Serve on stdio with the default configuration
  nanobanana serve

  # Serve over HTTP with CORS enabled
  nanobanana serve --transport http --listen :8628 --cors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := LoadConfig(configFile, f.apply(cmd))
			if err != nil {
				return err
			}
			logtrace.InitLogger(c.LogLevel, f.console)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, c, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&f.transport, "transport", "t", "", "Transport mode (stdio or http)")
	cmd.Flags().StringVarP(&f.listen, "listen", "l", "", "Listen address for http mode")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for generated images")
	cmd.Flags().BoolVar(&f.cors, "cors", false, "Handle CORS in http mode")
	cmd.Flags().BoolVar(&f.console, "console-log", false, "Write human readable logs to stderr")
	return cmd
}

// apply returns a config override for the flags the user set.
func (f *serveFlags) apply(cmd *cobra.Command) func(*config.ConfigParam) {
	return func(c *config.ConfigParam) {
		if f.transport != "" {
			c.Transport.Mode = f.transport
		}
		if f.listen != "" {
			c.Transport.ListenAddr = f.listen
		}
		if f.outputDir != "" {
			c.OutputDir = f.outputDir
		}
		if cmd.Flags().Changed("cors") {
			c.Transport.HandleCORS = f.cors
		}
	}
}

func run(ctx context.Context, c *config.ConfigParam, in io.Reader, out io.Writer) error {
	slog := log.With().Str("state", "init").Logger()

	policy, err := c.RetryPolicy()
	if err != nil {
		return err
	}
	client, err := genclient.New(ctx, c.ResolveAPIKey(), policy)
	if err != nil {
		return err
	}
	svc, sessions, err := newService(c, client)
	if err != nil {
		return err
	}
	defer sessions.CloseAll()

	slog.Info().
		Str("transport", c.Transport.Mode).
		Str("default_model", c.DefaultModel).
		Str("output_dir", c.OutputDir).
		Msg("starting nanobanana")

	if c.Transport.Mode == config.TransportHTTP {
		ln, err := net.Listen("tcp", c.Transport.ListenAddr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", c.Transport.ListenAddr, err)
		}
		return serveHTTP(ctx, ln, svc.Router())
	}
	if err := svc.ServeStdio(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio server error: %w", err)
	}
	slog.Info().Msg("server stopped")
	return nil
}

// newService wires the session registry and artifact store around client.
// All transports share the returned registry.
func newService(c *config.ConfigParam, client *genclient.Client) (*mcpservice.Service, *session.Manager, error) {
	policy := client.Policy()
	sessions := session.NewManager(session.NewGenaiChannelFactory(client.Generator()), policy)
	opts := mcpservice.Options{
		DefaultModel: c.DefaultModel,
		HandleCORS:   c.Transport.HandleCORS,
	}
	if policy.Enabled {
		// leave room for the last attempt after the retry budget runs out
		opts.RequestTimeout = policy.Timeout + time.Minute
	}
	svc, err := mcpservice.New(client, sessions, artifact.NewStore(c.OutputDir), opts)
	if err != nil {
		return nil, nil, err
	}
	return svc, sessions, nil
}

// serveHTTP serves handler on ln until ctx is done, then shuts down
// gracefully.
func serveHTTP(ctx context.Context, ln net.Listener, handler http.Handler) error {
	slog := log.With().Str("state", "serve").Logger()
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info().Str("addr", ln.Addr().String()).Msg("mcp server started")
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info().Msg("shutdown signal received")
	}

	// Give outstanding requests time to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error().Err(err).Msg("could not stop server gracefully")
		if err := srv.Close(); err != nil {
			slog.Error().Err(err).Msg("could not stop server")
		}
	}
	slog.Info().Msg("server stopped")
	return nil
}
