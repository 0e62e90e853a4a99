// Package rest exposes the volunteer lifecycle over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/volunteerhub/internal/dbx"
	"github.com/dmitrijs2005/volunteerhub/internal/logging"
	"github.com/dmitrijs2005/volunteerhub/internal/server/models"
	"github.com/dmitrijs2005/volunteerhub/internal/server/services"
	"github.com/gin-gonic/gin"
)

// VolunteerService is the lifecycle surface the handlers call.
type VolunteerService interface {
	List(ctx context.Context) ([]*models.Volunteer, error)
	Get(ctx context.Context, id string) (*models.Volunteer, error)
	Register(ctx context.Context, reg models.Registration) (*models.Volunteer, error)
	Verify(ctx context.Context, id, token string) error
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Update(ctx context.Context, id string, patch models.VolunteerPatch) (*models.Volunteer, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type HTTPServer struct {
	address         string
	volunteers      VolunteerService
	db              dbx.Pinger
	logger          logging.Logger
	jwtSecret       []byte
	shutdownTimeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, vs VolunteerService, db dbx.Pinger, secretKey string, shutdownTimeout time.Duration) (*HTTPServer, error) {
	if vs == nil {
		return nil, errors.New("volunteer service is required")
	}
	return &HTTPServer{
		address:         a,
		volunteers:      vs,
		db:              db,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(secretKey),
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Handler builds the gin engine with every route registered.
func (s *HTTPServer) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})

	r.GET("/healthz", s.Health)

	api := r.Group("/api")
	{
		v := api.Group("/volunteer")
		v.GET("", s.ListVolunteers)
		v.DELETE("", s.DeleteAllVolunteers)
		v.POST("/register", s.RegisterVolunteer)
		v.POST("/login", s.Login)
		v.GET("/:volunteerId", s.GetVolunteer)
		v.PATCH("/:volunteerId", s.UpdateVolunteer)
		v.DELETE("/:volunteerId", s.DeleteVolunteer)
		v.GET("/:volunteerId/verify/:token", s.VerifyVolunteer)

		api.GET("/session", s.sessionTokenMiddleware(), s.Session)
	}

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled. It returns only
// after in-flight requests have finished or the shutdown timeout has passed.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	// Serve returns ErrServerClosed as soon as Shutdown begins, so wait for
	// Shutdown itself to drain active handlers.
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped

	return nil
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}
