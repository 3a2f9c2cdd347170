package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	web "followup/internal/adapters/http"
	"followup/internal/adapters/http/perf"
	"followup/internal/application/orchestrators"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve runs the API until ctx is cancelled, then drains connections.
func (a *app) serve(ctx context.Context) error {
	metrics := perf.New()
	db, err := a.openDB(ctx, metrics)
	if err != nil {
		return err
	}
	defer db.Close()

	stores := web.NewStores(db)
	if err := a.seedAdmin(ctx, stores); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           web.NewMux(ctx, stores, a.cfg, metrics),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		slog.Info("server_event", "event", "listening", "addr", a.cfg.Addr, "env", a.cfg.Env)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("server_event", "event", "shutting_down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// seedAdmin creates the configured administrator on an empty database.
// Without admin.email and admin.password nothing is seeded.
func (a *app) seedAdmin(ctx context.Context, stores *web.Stores) error {
	if a.cfg.Admin.Email == "" || a.cfg.Admin.Password == "" {
		slog.Debug("admin_seed_skipped", "reason", "admin.email or admin.password unset")
		return nil
	}
	created, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountInput{
		Email:    a.cfg.Admin.Email,
		Password: a.cfg.Admin.Password,
		Name:     a.cfg.Admin.Name,
		Gender:   a.cfg.Admin.Gender,
	}, stores.Accounts, orchestrators.CreateAccountDeps{
		MemberStore: stores.Members,
		Now:         time.Now,
		GenerateID:  newID,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		slog.Info("admin_seeded", "email", a.cfg.Admin.Email)
	}
	return nil
}
