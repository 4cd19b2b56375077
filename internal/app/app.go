// Package app wires configuration into the repositories, mail sources and
// use cases shared by the server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"hostel-sync-service/internal/domain/entity"
	domainrepo "hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/internal/infrastructure/config"
	"hostel-sync-service/internal/infrastructure/oauth"
	"hostel-sync-service/internal/infrastructure/persistence"
	"hostel-sync-service/internal/infrastructure/router"
	"hostel-sync-service/internal/interface/gmail"
	"hostel-sync-service/internal/interface/imapsource"
	"hostel-sync-service/internal/interface/mailfile"
	"hostel-sync-service/internal/interface/repository"
	"hostel-sync-service/internal/usecase"
	"hostel-sync-service/pkg/logger"
	"hostel-sync-service/pkg/metrics"
	"hostel-sync-service/templates"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

// MetricsNamespace prefixes every exported metric
const MetricsNamespace = "hostel_sync"

// Options adjust the wiring for one process
type Options struct {
	// MailDir replaces the configured mail source with a directory of .eml
	// files
	MailDir string
	// Registerer receives the metrics; nil uses the default registry
	Registerer prometheus.Registerer
}

// App holds the wired components
type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics

	Mongo        *mongo.Client
	Transactions *repository.MongoTransactionRepository
	Bookings     *repository.MongoBookingRepository
	Credentials  domainrepo.CredentialRepository
	Runs         domainrepo.SyncRunRepository
	WhatsApp     *repository.WhatsappRepository

	Provider  *oauth.CredentialProvider
	Router    *router.SubjectRouter
	Sync      *usecase.SyncProcessor
	Reminders *usecase.ReminderJob

	closers []func(context.Context) error
}

// New connects the stores and builds the pipelines. Close releases what was
// opened, also when New fails half way.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (a *App, err error) {
	a = &App{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.NewMetrics(MetricsNamespace, opts.Registerer),
	}
	defer func() {
		if err != nil {
			a.Close(context.Background())
			a = nil
		}
	}()

	log.Info("Connecting to MongoDB")
	a.Mongo, err = persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		return a, err
	}
	a.closers = append(a.closers, a.Mongo.Disconnect)
	db := persistence.GetDatabase(a.Mongo, cfg.MongoDB)

	a.Transactions = repository.NewMongoTransactionRepository(db)
	if err = a.Transactions.EnsureIndexes(ctx); err != nil {
		return a, err
	}
	a.Bookings = repository.NewMongoBookingRepository(db)
	if err = a.Bookings.EnsureIndexes(ctx); err != nil {
		return a, err
	}

	if a.Credentials, err = credentialStore(ctx, cfg, db); err != nil {
		return a, err
	}

	if cfg.PostgresURI != "" {
		if err = a.openSyncRuns(); err != nil {
			return a, err
		}
	}

	a.Provider = oauth.NewCredentialProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GmailRedirectURL, a.Credentials, log)

	var opener domainrepo.MailSourceOpener
	switch {
	case opts.MailDir != "":
		opener = mailfile.NewDirOpener(opts.MailDir)
	case cfg.MailSource == config.MailSourceIMAP:
		opener = imapsource.NewOpener(imapsource.Config{
			Host:     cfg.IMAPHost,
			Port:     cfg.IMAPPort,
			Username: cfg.IMAPUsername,
			Password: cfg.IMAPPassword,
			TLS:      cfg.IMAPTLS,
		}, log)
	default:
		opener = gmail.NewOpener(a.Provider, log)
	}

	a.Router = NewRouter(cfg, a.Bookings, a.Transactions, log)

	a.Sync = usecase.NewSyncProcessor(opener, a.Runs, a.Metrics, log)

	a.WhatsApp = repository.NewWhatsappRepository(cfg.WhatsAppAPIURL, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppAccessToken, log)
	if !a.WhatsApp.Configured() {
		log.Warn("WhatsApp credentials missing, reminders will fail")
	}
	a.Reminders = usecase.NewReminderJob(a.Bookings, a.WhatsApp, usecase.ReminderConfig{
		Template:     cfg.ReminderTemplate(),
		Language:     cfg.WhatsAppLanguage,
		PropertyName: cfg.PropertyName,
		Delay:        cfg.ReminderDelay,
		Location:     cfg.Location(),
	}, a.Metrics, log)

	return a, nil
}

// NewRouter registers the booking and transaction pipelines. The
// repositories may be nil when the router only serves dry runs.
func NewRouter(cfg *config.Config, bookings domainrepo.BookingRepository, transactions domainrepo.TransactionRepository, log logger.Logger) *router.SubjectRouter {
	r := router.NewSubjectRouter(log)
	r.Register(templates.NewBookingVoucherHandler(
		bookings,
		entity.MailQuery{From: cfg.Bookings.From, Subject: cfg.Bookings.Subject},
		cfg.Bookings.MaxResults,
		cfg.Location(),
		log,
	))
	r.Register(templates.NewTransactionAlertHandler(
		transactions,
		entity.MailQuery{From: cfg.Transactions.From, Subject: cfg.Transactions.Subject},
		cfg.Transactions.MaxResults,
		log,
	))
	return r
}

// NewCredentialStore opens only the configured credential backend. The
// returned func releases it.
func NewCredentialStore(ctx context.Context, cfg *config.Config) (domainrepo.CredentialRepository, func(context.Context), error) {
	if cfg.CredentialBackend == config.CredentialBackendKeyring {
		store, err := credentialStore(ctx, cfg, nil)
		return store, func(context.Context) {}, err
	}

	client, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		return nil, nil, err
	}
	release := func(ctx context.Context) { _ = client.Disconnect(ctx) }

	store, err := credentialStore(ctx, cfg, persistence.GetDatabase(client, cfg.MongoDB))
	if err != nil {
		release(context.Background())
		return nil, nil, err
	}
	return store, release, nil
}

func credentialStore(ctx context.Context, cfg *config.Config, db *mongo.Database) (domainrepo.CredentialRepository, error) {
	if cfg.CredentialBackend == config.CredentialBackendKeyring {
		ring, err := repository.OpenKeyring(cfg.KeyringDir)
		if err != nil {
			return nil, err
		}
		return repository.NewKeyringCredentialRepository(ring), nil
	}

	creds := repository.NewMongoCredentialRepository(db)
	if err := creds.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return creds, nil
}

func (a *App) openSyncRuns() error {
	a.Logger.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(a.Config.PostgresURI)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to access PostgreSQL pool: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	runs := repository.NewGormSyncRunRepository(gormDB)
	if err := runs.Migrate(); err != nil {
		return err
	}
	a.Runs = runs
	return nil
}

// Pipeline returns the registered pipeline for purpose
func (a *App) Pipeline(purpose entity.Purpose) (usecase.Pipeline, error) {
	for _, p := range a.Router.Pipelines() {
		if p.Purpose() == purpose {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no pipeline registered for %s", purpose)
}

// Close releases the database connections in reverse order of opening
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Logger.Error("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}
