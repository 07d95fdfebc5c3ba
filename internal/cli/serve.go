package cli

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fzabel/revsynth/pkg/api"
	"github.com/fzabel/revsynth/pkg/store"
)

// serveCommand creates the serve command for the read-only template API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		useDB bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the template API over HTTP",
		Long: `Serve read-only template queries over HTTP.

Endpoints:
  GET /healthz                  liveness probe
  GET /api/templates            list templates (width, depth, limit params)
  GET /api/templates/{hash}     fetch one template by canonical hash
  GET /api/stats                store statistics

With --db=false the server runs against an empty in-memory store, which is
useful for smoke-testing deployments without MongoDB.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, useDB)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().BoolVar(&useDB, "db", true, "back the API with the configured template store")

	return cmd
}

// runServe starts the HTTP server and blocks until the context is cancelled
// or the listener fails.
func (c *CLI) runServe(ctx context.Context, addr string, useDB bool) error {
	var st store.Store
	if useDB {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		st, err = c.openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close(context.Background())
	} else {
		st = store.NewMemoryStore()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(st, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printInfo("Listening on %s", StyleLink.Render(listenURL(addr)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// listenURL renders a clickable URL for a listen address like ":8080".
func listenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
