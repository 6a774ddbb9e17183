package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	"github.com/nickmarkin/AAA-Summarizer/core/report"
	"github.com/nickmarkin/AAA-Summarizer/core/review"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		FacultySvc  *faculty.Service
		ActivityReg *activity.Registry
		SurveySvc   *survey.Service
		DeptSvc     *department.Service
		ReviewSvc   *review.Service
		ReportSvc   *report.Service

		// IFVerifier is optional; when nil, merged views skip DOI checks.
		IFVerifier IFVerifier
	}

	// IFVerifier flags entries whose reported impact factor cannot be
	// confirmed. Display-only; satisfied by *bibliosvc.CrossrefVerifier.
	IFVerifier interface {
		VerifyTree(ctx context.Context, tree survey.Tree) (checked, unconfirmed int)
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.Logger())
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	registerFacultyAPI(v1, s.deps)
	registerActivityAPI(v1, s.deps)
	registerSurveyAPI(v1, s.deps)
	registerDepartmentAPI(v1, s.deps)
	registerReviewAPI(v1, s.deps)
	registerReportAPI(v1, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown triggers a graceful shutdown, used on integrity errors.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the AAA Summarizer API!")
}
