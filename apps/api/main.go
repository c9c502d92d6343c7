package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/nbaobe/portal/apps/api/echo"
	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/session"
	"github.com/nbaobe/portal/core/user"
	logsvc "github.com/nbaobe/portal/services/logger"
	"github.com/nbaobe/portal/storage/database"
	inmemdb "github.com/nbaobe/portal/storage/database/inmem"
	sqlxrepos "github.com/nbaobe/portal/storage/database/sqlx"
	"github.com/nbaobe/portal/storage/fixtures"
)

type repositories struct {
	users    user.Repository
	refdata  refdata.Repository
	sessions session.Store
	close    func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	usrSvc := user.NewService(repos.users)
	refSvc := refdata.NewService(repos.refdata)
	sessSvc := session.NewService(usrSvc, refSvc, repos.sessions, logger, session.WithTTL(conf.Server.JWTExpirationDelta))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	login.InitValidators(validate, translator)

	if err = seedFixtures(conf, validate, refSvc, usrSvc, logger); err != nil {
		logger.Fatal(fmt.Sprintf("seeding fixtures: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("db").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			RefSvc:     refSvc,
			SessionSvc: sessSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpRepositories(conf *core.Config) (repositories, error) {
	if conf.Database.InMemory() {
		db := inmemdb.Open()
		return repositories{
			users:    inmemdb.NewUserRepository(db),
			refdata:  inmemdb.NewRefdataRepository(db),
			sessions: inmemdb.NewSessionStore(db),
			close:    func() error { return nil },
		}, nil
	}

	db, err := setUpDB(conf)
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		users:    sqlxrepos.NewUserRepository(db),
		refdata:  sqlxrepos.NewRefdataRepository(db),
		sessions: sqlxrepos.NewSessionStore(db),
		close:    db.Close,
	}, nil
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx := context.Background()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(ctx, db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// seedFixtures loads FixturesPath, or the demo data when running in memory.
func seedFixtures(conf *core.Config, validate *validator.Validate, refSvc *refdata.Service, usrSvc *user.Service, logger core.Logger) error {
	var f fixtures.Fixtures
	var err error
	switch {
	case conf.Portal.FixturesPath != "":
		f, err = fixtures.LoadFile(conf.Portal.FixturesPath)
	case conf.Database.InMemory():
		f, err = fixtures.Demo()
	default:
		return nil
	}
	if err != nil {
		return err
	}

	res, err := fixtures.Seed(context.Background(), f, validate, refSvc, usrSvc)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("fixtures seeded: %d colleges, %d programs, %d users", res.Colleges, res.Programs, res.Users))
	return nil
}
