package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/deskhive/deskhive/internal/config"
	"github.com/deskhive/deskhive/internal/database"
	"github.com/deskhive/deskhive/internal/mail"
	"github.com/deskhive/deskhive/internal/mail/connector"
	"github.com/deskhive/deskhive/internal/repository"
	"github.com/deskhive/deskhive/internal/service"
)

// app wires configuration, the datastore and the service layer for every
// subcommand.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	logger *log.Logger

	users     repository.UserRepository
	sessions  repository.SessionRepository
	tickets   repository.TicketRepository
	companies repository.CompanyRepository

	activity   *service.ActivityLogger
	auth       *service.AuthService
	sessionSvc *service.SessionService
	userSvc    *service.UserService
	ticketSvc  *service.TicketService
}

func newApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &app{
		cfg:       cfg,
		db:        db,
		logger:    log.New(log.Writer(), "[DESKHIVE] ", log.LstdFlags),
		users:     repository.NewUserRepository(db),
		sessions:  repository.NewSessionRepository(db),
		tickets:   repository.NewTicketRepository(db),
		companies: repository.NewCompanyRepository(db),
	}
	a.activity = service.NewActivityLogger(repository.NewActivityRepository(db))
	a.auth = service.NewAuthService(a.users, a.sessions, a.activity)
	a.sessionSvc = service.NewSessionService(a.sessions, a.users)
	a.userSvc = service.NewUserService(a.users, a.sessions, a.activity)
	a.ticketSvc = service.NewTicketService(a.tickets, a.activity)
	return a, nil
}

func (a *app) Close() {
	a.activity.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Printf("failed to close database: %v", err)
	}
}

// ingestorOptions distinguishes a full poll from a preview run.
type ingestorOptions struct {
	preview bool
}

// buildIngestor constructs the mail ingestor from config. Returns an error
// when the mailbox settings are incomplete.
func (a *app) buildIngestor(opts ingestorOptions) (*mail.Ingestor, error) {
	if err := a.cfg.ValidateMail(); err != nil {
		return nil, err
	}
	m := a.cfg.Mail

	fetcherOpts := []connector.IMAPOption{
		connector.WithIMAPDialTimeout(m.DialTimeout),
		connector.WithIMAPLoginTimeout(m.LoginTimeout),
	}
	if opts.preview {
		fetcherOpts = append(fetcherOpts,
			connector.WithIMAPBatchLimit(5),
			connector.WithIMAPMarkSeen(false))
	}
	fetcher := connector.NewIMAPFetcher(fetcherOpts...)

	account := connector.Account{
		Host:     m.Host,
		Port:     m.Port,
		Username: m.Username,
		Password: []byte(m.Password),
		Mailbox:  m.Mailbox,
		TLSMode:  m.EffectiveTLSMode(),
	}

	ingestOpts := []mail.IngestOption{mail.WithPollTimeout(m.PollTimeout)}
	if opts.preview {
		ingestOpts = append(ingestOpts, mail.WithDryRun(true))
	}
	return mail.NewIngestor(a.tickets, a.activity, fetcher, account, ingestOpts...), nil
}
