package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/deskhive/deskhive/internal/api"
	"github.com/deskhive/deskhive/internal/database"
	"github.com/deskhive/deskhive/internal/mail"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return runServer(a)
		},
	}
}

func runServer(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handlers := &api.Handlers{
		Auth:           a.auth,
		Sessions:       a.sessionSvc,
		Users:          a.userSvc,
		Tickets:        a.ticketSvc,
		Companies:      a.companies,
		Activity:       a.activity,
		LoginRateLimit: a.cfg.Auth.LoginRateLimit,
	}

	// Mail polling is optional in serve mode: without mailbox settings the
	// server still runs, it just cannot ingest.
	var ingestor *mail.Ingestor
	if a.cfg.Mail.Host != "" {
		ing, err := a.buildIngestor(ingestorOptions{})
		if err != nil {
			return err
		}
		ingestor = ing
		handlers.Ingestor = ing
	}

	var scheduler *cron.Cron
	if schedule := a.cfg.Mail.PollSchedule; schedule != "" {
		if ingestor == nil {
			a.logger.Printf("MAIL_POLL_SCHEDULE set but mailbox is not configured, ignoring")
		} else {
			scheduler = cron.New()
			_, err := scheduler.AddFunc(schedule, func() {
				summary, err := ingestor.Poll(context.Background())
				if err != nil {
					a.logger.Printf("scheduled mail poll failed: %v", err)
					return
				}
				a.logger.Printf("scheduled mail poll: created=%d updated=%d skipped=%d",
					summary.Created, summary.Updated, summary.Skipped)
			})
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	// Connection pool gauge for /metrics.
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				database.ObserveStats(a.db)
			}
		}
	}()

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Printf("listening on %s (%s)", a.cfg.ListenAddr, a.cfg.Redacted())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
