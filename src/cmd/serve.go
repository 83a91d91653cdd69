package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"money-server/src/api"
	"money-server/src/db"
	"money-server/src/handlers"
	"money-server/src/importer"
	"money-server/src/logger"
	"money-server/src/plaid"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cache, err := db.NewCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	profiles, err := importer.LoadProfiles(a.cfg.ImportProfiles)
	if err != nil {
		return fmt.Errorf("failed to load import profiles: %w", err)
	}

	env := &handlers.Env{Pool: a.pool, Cache: cache, Config: a.cfg, Profiles: profiles}
	if a.cfg.PlaidEnabled() {
		if env.Plaid, err = plaid.NewPlaidClient(a.cfg.PlaidClientID, a.cfg.PlaidSecret, a.cfg.PlaidEnv); err != nil {
			return err
		}
	}

	router, err := api.NewRouter(env)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Log.Info().
			Str("port", a.cfg.Port).
			Bool("read_only", a.cfg.ReadOnly).
			Bool("plaid", env.Plaid != nil).
			Int("import_profiles", len(profiles)).
			Msg("API server running")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
