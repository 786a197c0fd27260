// Package serve runs the HTTP API.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/api"
	"fjacquet/finance-advisor/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the budget, goals, health score and chat endpoints over HTTP.
The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
}

func run(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}
	listenAddr := addr
	if listenAddr == "" {
		listenAddr = c.GetConfig().Server.Addr
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}

	ctx, stop := signal.NotifyContext(root.Context(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, ln, api.NewRouter(c.APIDeps(), c.GetLogger()), c.GetLogger())
}

// Serve handles requests on ln until ctx is done, then drains in-flight
// requests.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger logging.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logging.F("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
