package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/offmue/pickem/external/espn"
	"github.com/offmue/pickem/internal/config"
	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/pick"
	"github.com/offmue/pickem/internal/domain/team"
	"github.com/offmue/pickem/internal/domain/usage"
	"github.com/offmue/pickem/internal/domain/user"
	"github.com/offmue/pickem/internal/infrastructure/repository/memory"
	"github.com/offmue/pickem/internal/infrastructure/repository/postgres"
	"github.com/offmue/pickem/internal/interfaces/httpapi"
	idgen "github.com/offmue/pickem/internal/platform/id"
	"github.com/offmue/pickem/internal/platform/logging"
	"github.com/offmue/pickem/internal/usecase"
)

// Application bundles the wired HTTP server with the background pieces
// that share its lifecycle.
type Application struct {
	Config config.Config
	Logger *logging.Logger
	Server *http.Server
	DB     *sqlx.DB

	scheduleService   *usecase.ScheduleService
	resultSyncService *usecase.ResultSyncService

	pollerCancel context.CancelFunc
	pollerDone   chan struct{}
}

type repositories struct {
	users   user.Repository
	teams   team.Repository
	matches match.Repository
	picks   pick.Repository
	usage   usage.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	app := &Application{Config: cfg, Logger: logger}

	repos, err := app.buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	pickService := usecase.NewPickService(
		repos.users,
		repos.teams,
		repos.matches,
		repos.picks,
		repos.usage,
		pick.DefaultRules(),
		idgen.NewRandomGenerator(),
		logger,
	)
	scheduleService := usecase.NewScheduleService(repos.matches)
	scoringService := usecase.NewScoringService(repos.users, repos.matches, repos.picks, logger)

	feed := espn.NewClient(espn.ClientConfig{
		BaseURL: cfg.ESPNBaseURL,
		Year:    cfg.ESPNSeasonYear,
		Timeout: cfg.ESPNTimeout,
		Logger:  logger,
	})
	resultSyncService := usecase.NewResultSyncService(
		feed,
		repos.teams,
		repos.matches,
		scoringService,
		cfg.ResultSyncWorkers,
		logger,
	)

	handler := httpapi.NewHandler(pickService, scheduleService, scoringService, resultSyncService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app.Server = server
	app.scheduleService = scheduleService
	app.resultSyncService = resultSyncService

	return app, nil
}

func (a *Application) buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if !cfg.UsesPostgres() {
		logger.Info("storage mode", "backend", "memory")

		matchRepo := memory.NewMatchRepository(memory.SeedMatches())
		pickRepo := memory.NewPickRepository()
		return repositories{
			users:   memory.NewUserRepository(memory.SeedUsers()),
			teams:   memory.NewTeamRepository(memory.SeedTeams()),
			matches: matchRepo,
			picks:   pickRepo,
			usage:   memory.NewUsageRepository(pickRepo, matchRepo),
		}, nil
	}

	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if cfg.SeedDemoData {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			_ = db.Close()
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	logger.Info("storage mode", "backend", "postgres", "database", dbNameFromURL(cfg.DBURL))

	a.DB = db
	return repositories{
		users:   postgres.NewUserRepository(db),
		teams:   postgres.NewTeamRepository(db),
		matches: postgres.NewMatchRepository(db),
		picks:   postgres.NewPickRepository(db),
		usage:   postgres.NewUsageRepository(db),
	}, nil
}

// StartResultSyncPoller launches the background loop that refreshes match
// results for the current week. The loop only writes through the result
// sync service, which in turn only touches picks via the scoring
// reconciler's public contract.
func (a *Application) StartResultSyncPoller(ctx context.Context) {
	if !a.Config.ResultSyncEnabled {
		a.Logger.Info("result sync poller disabled", "reason", "RESULT_SYNC_ENABLED=false")
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	a.pollerCancel = cancel
	a.pollerDone = make(chan struct{})

	go func() {
		defer close(a.pollerDone)

		ticker := time.NewTicker(a.Config.ResultSyncInterval)
		defer ticker.Stop()

		a.Logger.Info("result sync poller started", "interval", a.Config.ResultSyncInterval.String())
		a.runResultSync(pollCtx)
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				a.runResultSync(pollCtx)
			}
		}
	}()
}

func (a *Application) runResultSync(ctx context.Context) {
	week, err := a.scheduleService.CurrentWeek(ctx)
	if err != nil {
		a.Logger.WarnContext(ctx, "resolve current week for result sync failed", "error", err)
		return
	}

	result, err := a.resultSyncService.SyncWeeks(ctx, []int{week})
	if err != nil {
		a.Logger.WarnContext(ctx, "scheduled result sync failed", "week", week, "error", err)
		return
	}

	a.Logger.InfoContext(ctx, "scheduled result sync finished",
		"week", week,
		"matches_upserted", result.MatchesUpserted,
		"matches_completed", result.MatchesCompleted,
		"picks_scored", result.PicksScored,
	)
}

// Shutdown stops the poller, drains the HTTP server, and closes the
// database connection.
func (a *Application) Shutdown(ctx context.Context) error {
	if a.pollerCancel != nil {
		a.pollerCancel()
		select {
		case <-a.pollerDone:
		case <-ctx.Done():
		}
	}

	var firstErr error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
