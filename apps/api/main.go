package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/nickmarkin/AAA-Summarizer/apps/api/echo"
	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	"github.com/nickmarkin/AAA-Summarizer/core/report"
	"github.com/nickmarkin/AAA-Summarizer/core/review"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
	bibliosvc "github.com/nickmarkin/AAA-Summarizer/services/biblio"
	emailsvc "github.com/nickmarkin/AAA-Summarizer/services/email"
	logsvc "github.com/nickmarkin/AAA-Summarizer/services/logger"
	"github.com/nickmarkin/AAA-Summarizer/storage/database"
	sqlxrepos "github.com/nickmarkin/AAA-Summarizer/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate, translator := core.NewValidator()

	activityReg := activity.NewRegistry(sqlxrepos.NewActivityTypeRepository(db))
	facultySvc := faculty.NewService(sqlxrepos.NewFacultyRepository(db), logger, validate)
	deptSvc := department.NewService(sqlxrepos.NewDepartmentRepository(db), validate)
	surveySvc := survey.NewService(
		conf, db, sqlxrepos.NewSurveyRepository(db),
		activityReg, facultySvc, deptSvc,
		mailSvc, logger, validate,
	)
	reviewSvc := review.NewService(sqlxrepos.NewReviewRepository(db))
	reportSvc := report.NewService(facultySvc, surveySvc, deptSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		debugAddr := fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port+1)
		if err := http.ListenAndServe(debugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		FacultySvc:  facultySvc,
		ActivityReg: activityReg,
		SurveySvc:   surveySvc,
		DeptSvc:     deptSvc,
		ReviewSvc:   reviewSvc,
		ReportSvc:   reportSvc,
		IFVerifier:  bibliosvc.NewCrossrefVerifier(logger),
	})

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

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
