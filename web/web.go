// Package web provides the console web server: sessions, templates, static
// assets, route guarding, page controllers and the background job scheduler.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/config"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/util/common"
	"github.com/shyamgroup/backoffice/util/random"
	"github.com/shyamgroup/backoffice/web/controller"
	"github.com/shyamgroup/backoffice/web/global"
	"github.com/shyamgroup/backoffice/web/job"
	"github.com/shyamgroup/backoffice/web/locale"
	"github.com/shyamgroup/backoffice/web/middleware"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/routing"
	"github.com/shyamgroup/backoffice/web/service"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server is the console web server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	client   *backend.Client
	registry *resource.Registry
	table    *routing.Table

	backendJob *job.CheckBackendJob
	cron       *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server talking to the configured backend.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:    ctx,
		cancel: cancel,
		client: backend.NewClient(config.GetAPIBase()),
		table:  routing.DefaultTable(resource.All()),
	}
}

// fieldInput is the argument of the "field_input" template.
type fieldInput struct {
	Prefix string
	Field  resource.Field
	Value  string
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"i18n":  locale.I18n,
		"bytes": common.FormatBytes,
		"join":  strings.Join,
		"fieldArgs": func(prefix string, f resource.Field, value string) fieldInput {
			return fieldInput{Prefix: prefix, Field: f, Value: value}
		},
	}
}

// getHtmlFiles walks the local `web/html` directory and returns a list of
// template file paths. Used only in debug/development mode.
func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// getHtmlTemplate parses the embedded HTML templates.
func getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(htmlFS, "html/*.html")
}

func sessionSecret() []byte {
	secret := config.GetSessionSecret()
	if secret == "" {
		logger.Warning("CONSOLE_SESSION_SECRET is not set, sessions will not survive a restart")
		secret = random.Seq(32)
	}
	return []byte(secret)
}

// NewEngine builds the gin engine for client, with controllers kept in registry.
func NewEngine(client *backend.Client, registry *resource.Registry, table *routing.Table, secret []byte) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if config.IsDebug() {
		engine.Use(gin.Logger())
	}

	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.GetSessionMaxAge() * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(locale.LocalizerMiddleware())

	engine.SetFuncMap(funcMap())
	tpl, err := getHtmlTemplate(funcMap())
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tpl)
	engine.StaticFS("/assets", http.FS(&wrapAssetsFS{FS: assetsFS}))

	g := engine.Group("")
	g.Use(middleware.Gate(client), middleware.RouteGuard(table))

	controller.NewIndexController(g, registry)
	controller.NewResourceController(g, registry)
	controller.NewUserAdminController(g, service.NewUserAdminService(client))
	controller.NewActivityLogController(g, service.NewActivityLogService(client, config.GetLogsLimit()))

	engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, locale.I18n("notFound"))
	})

	return engine, nil
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := resource.NewRegistry(s.client, time.Duration(config.GetSessionMaxAge())*time.Minute)
	if err != nil {
		return nil, err
	}
	s.registry = registry

	engine, err := NewEngine(s.client, registry, s.table, sessionSecret())
	if err != nil {
		return nil, err
	}
	if config.IsDebug() {
		files, err := s.getHtmlFiles()
		if err == nil && len(files) > 0 {
			engine.LoadHTMLFiles(files...)
		}
	}
	return engine, nil
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	s.backendJob = job.NewCheckBackendJob(s.client)
	go s.backendJob.Run()
	if _, err := s.cron.AddJob("@every 30s", s.backendJob); err != nil {
		logger.Warning("add backend check job failed:", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err := locale.InitLocalizer(); err != nil {
		return err
	}

	s.cron = cron.New(cron.WithLocation(time.Local), cron.WithSeconds())
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", config.GetListen())
	if err != nil {
		return err
	}
	logger.Info("Console running HTTP on", listener.Addr(), "backend", s.client.Base())

	s.listener = listener
	// requests in flight see Stop through their context
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()
	global.SetWebServer(s)

	return nil
}

// Stop shuts down the web server and the scheduler.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2, err3 error
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if err2 != nil && strings.Contains(err2.Error(), "use of closed network connection") {
			err2 = nil
		}
	}
	if s.registry != nil {
		err3 = s.registry.Close()
	}
	return common.Combine(err1, err2, err3)
}

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }

// BackendUp reports whether the last reachability check succeeded.
func (s *Server) BackendUp() bool {
	return s.backendJob != nil && s.backendJob.Up()
}
