package main

import (
	"os"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
	logsvc "github.com/trezcool/schoolrecords/services/logger"
	"github.com/trezcool/schoolrecords/storage/database"
	sqlxrepos "github.com/trezcool/schoolrecords/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		os.Stderr.WriteString("loading config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logsvc.NewConsoleLogger(os.Stderr, "ADMIN", conf)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening database")
	}
	mg, err := database.NewMigrator(db)
	if err != nil {
		_ = db.Close()
		logger.Fatal().Err(err).Msg("setting up migrations")
	}

	// start CLI
	usrRepo := sqlxrepos.NewUserRepository(db)
	cli := commandLine{
		usrRepo:  usrRepo,
		stdSvc:   student.NewService(sqlxrepos.NewStudentRepository(db), user.NewService(usrRepo, nil, conf)),
		migrator: mg,
		builder:  query.NewBuilder(conf.API.DefaultPageSize, conf.API.MaxPageSize),
		out:      os.Stdout,
	}
	err = cli.run(os.Args[1:])
	_ = db.Close()
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
