package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
	"github.com/trezcool/schoolrecords/services/metrics"
)

type (
	ServerDeps struct {
		Conf         *core.Config
		Logger       core.Logger
		AccessLog    *zerolog.Logger // nil: no request logs
		UserSvc      user.Service
		StudentSvc   student.Service
		ProfessorSvc professor.Service
		GradeSvc     grade.Service
		Validate     *validator.Validate
		Translator   ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		tokens   *TokenIssuer
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		tokens:   NewTokenIssuer(deps.Conf.JWT),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !conf.Server.DisableReqLogs && s.deps.AccessLog != nil {
		s.app.Use(requestLogger(*s.deps.AccessLog))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, conf.Debug, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := s.tokens.middleware()
	pgr := newPager(conf.API)

	registerUserAPI(v1, jwt, pgr, s.tokens, s.deps.UserSvc, s.deps.Validate)
	registerStudentAPI(v1, jwt, pgr, s.deps.StudentSvc, s.deps.GradeSvc, s.deps.Validate)
	registerProfessorAPI(v1, jwt, pgr, s.deps.ProfessorSvc, s.deps.Validate)
	registerGradeAPI(v1, jwt, pgr, conf.API.ExportLimit, gradeDeps{
		svc:      s.deps.GradeSvc,
		stdSvc:   s.deps.StudentSvc,
		profSvc:  s.deps.ProfessorSvc,
		validate: s.deps.Validate,
	})
}

// Start listens on the configured host until the server is shut down.
// Listening errors are sent to Errors().
func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "starting API server")
	}
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// signalShutdown asks the main goroutine to stop the server gracefully.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := logger.Info()
			if v.Error != nil {
				evt = logger.Warn().Err(v.Error)
			}
			evt.
				Str("id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		status := ctx.Response().Status
		if err != nil && !ctx.Response().Committed {
			status = httpStatusOf(err)
		}
		metrics.ObserveRequest(ctx.Request().Method, ctx.Path(), status, time.Since(start))
		return err
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the School Records API!")
}
