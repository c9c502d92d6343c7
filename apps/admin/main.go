package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/user"
	logsvc "github.com/nbaobe/portal/services/logger"
	"github.com/nbaobe/portal/storage/database"
	inmemdb "github.com/nbaobe/portal/storage/database/inmem"
	sqlxrepos "github.com/nbaobe/portal/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	rbLogger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	defer rbLogger.Close()
	logger = rbLogger

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	cli := commandLine{validate: validate}

	if conf.Database.InMemory() {
		db := inmemdb.Open()
		cli.usrSvc = user.NewService(inmemdb.NewUserRepository(db))
		cli.refSvc = refdata.NewService(inmemdb.NewRefdataRepository(db))
	} else {
		ctx := context.Background()
		errAndDie(database.CreateIfNotExist(ctx, conf))

		db, err := database.Open(ctx, conf)
		errAndDie(err)
		defer db.Close()

		cli.db = db.DB
		cli.usrSvc = user.NewService(sqlxrepos.NewUserRepository(db))
		cli.refSvc = refdata.NewService(sqlxrepos.NewRefdataRepository(db))
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		rbLogger.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
