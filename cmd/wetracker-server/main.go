package main

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

	"github.com/jmoiron/sqlx"
	"github.com/sourcegraph/conc"

	server "github.com/kazz187/wetracker/internal"
	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/eventbus"
	"github.com/kazz187/wetracker/internal/mail"
	"github.com/kazz187/wetracker/internal/notification"
	"github.com/kazz187/wetracker/internal/profile"
	profilerepo "github.com/kazz187/wetracker/internal/profile/repositoryimpl"
	"github.com/kazz187/wetracker/internal/pushnotification"
	pushsubrepo "github.com/kazz187/wetracker/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/wetracker/internal/task"
	taskrepo "github.com/kazz187/wetracker/internal/task/repositoryimpl"
	"github.com/kazz187/wetracker/pkg/clog"
	"github.com/kazz187/wetracker/pkg/sqlstore"
	"github.com/kazz187/wetracker/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	if err := run(env); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	profiles profile.Repository
	tasks    task.Repository
	store    storage.Storage
	db       *sqlx.DB
}

// setupRepositories picks the backend for profiles and tasks. Push
// subscriptions always live in object storage; with STORAGE_TYPE=sqlite that
// is the local directory.
func setupRepositories(ctx context.Context, env *config.StorageEnv) (*repositories, error) {
	switch env.Type {
	case "s3":
		store, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return &repositories{
			profiles: profilerepo.NewYAMLRepository(store),
			tasks:    taskrepo.NewYAMLRepository(store),
			store:    store,
		}, nil
	case "sqlite":
		db, err := sqlstore.Open(env.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		store, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return &repositories{
			profiles: profilerepo.NewSQLiteRepository(db),
			tasks:    taskrepo.NewSQLiteRepository(db),
			store:    store,
			db:       db,
		}, nil
	default:
		store, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return &repositories{
			profiles: profilerepo.NewYAMLRepository(store),
			tasks:    taskrepo.NewYAMLRepository(store),
			store:    store,
		}, nil
	}
}

func run(env *config.Env) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	repos, err := setupRepositories(ctx, &env.StorageEnv)
	if err != nil {
		return err
	}
	if repos.db != nil {
		defer repos.db.Close()
	}
	pushSubRepo := pushsubrepo.NewYAMLRepository(repos.store)

	// Setup notification channels
	renderer, err := mail.NewRenderer(env.AppName, env.MailEnv.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}
	if !env.MailEnv.Configured() {
		slog.Warn("SMTP not configured, emails will be logged and skipped")
	}
	notifiers := notification.Notifiers{
		mail.NewSender(&env.MailEnv),
		pushnotification.NewSender(&env.VAPIDEnv, pushSubRepo, env.AppName),
	}

	bus := eventbus.New[*notification.Plan]()
	dispatcher := notification.NewDispatcher(repos.tasks, repos.profiles, renderer, notifiers, env.AppURL, &env.NotificationEnv)
	worker := notification.NewWorker(bus, dispatcher, env.NotificationEnv.QueueSize)

	srv := server.NewServer(
		env,
		notification.NewServer(dispatcher, bus),
		task.NewServer(repos.tasks),
		profile.NewServer(repos.profiles),
		pushnotification.NewServer(&env.VAPIDEnv, pushSubRepo, repos.profiles),
	)

	// The worker outlives the HTTP server so plans accepted during shutdown
	// are still drained.
	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorker()

	var wg conc.WaitGroup
	wg.Go(func() { worker.Start(workerCtx) })
	wg.Go(func() {
		if err := renderer.Watch(ctx); err != nil {
			slog.Error("mail template watcher stopped", "error", err)
		}
	})
	wg.Go(func() {
		if err := srv.ListenAndServe(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	})

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	stopWorker()
	wg.Wait()
	return nil
}
