// Package devapi is a local implementation of the content backend contract,
// backed by sqlite. It serves `console devapi` and the console's tests.
package devapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shyamgroup/backoffice/config"
	"github.com/shyamgroup/backoffice/database"
	"github.com/shyamgroup/backoffice/database/model"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/util/crypto"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Server is the development backend.
type Server struct {
	db      *gorm.DB
	secret  []byte
	schemas []*resource.Schema
	engine  *gin.Engine

	httpServer *http.Server
}

// New builds a server over db, seeding the configured admin account into an
// empty user table.
func New(db *gorm.DB, secret string) (*Server, error) {
	s := &Server{
		db:      db,
		secret:  []byte(secret),
		schemas: resource.All(),
	}
	if err := s.seedAdmin(); err != nil {
		return nil, err
	}
	s.engine = s.initRouter()
	return s, nil
}

// Handler returns the HTTP handler, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) seedAdmin() error {
	empty, err := database.IsEmpty(s.db, "users")
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	email, password := config.GetDevAdmin()
	email = strings.ToLower(email)
	hash, err := crypto.HashPassword(password, 0)
	if err != nil {
		return err
	}
	logger.Infof("seeding admin account %s", email)
	return s.db.Create(&model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         session.RoleAdmin,
	}).Error
}

func (s *Server) initRouter() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.audit())

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	engine.GET("/uploads/:id/:name", s.serveUpload)

	auth := engine.Group("/auth")
	{
		auth.POST("/login", s.login)
		admin := auth.Group("", s.requireAuth(), s.requireRole(session.RoleAdmin))
		admin.POST("/create-uploader", s.createUploader)
		admin.GET("/users", s.listUsers)
		admin.PUT("/users/:id", s.updateUserRole)
		admin.DELETE("/users/:id", s.deleteUser)
	}

	logs := engine.Group("/logs", s.requireAuth(), s.requireRole(session.RoleAdmin))
	{
		logs.GET("", s.listLogs)
		logs.DELETE("/:id", s.deleteLog)
	}

	staff := engine.Group("", s.requireAuth(), s.requireRole(session.RoleAdmin, session.RoleUploader))
	for _, schema := range s.schemas {
		s.mountResource(engine, staff, schema)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	return engine
}

// Run serves on listen until ctx is cancelled.
func (s *Server) Run(ctx context.Context, listen string) error {
	listener, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	s.httpServer = &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	logger.Info("devapi listening on", listener.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
