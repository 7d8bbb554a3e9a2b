package server

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coldvault/vault/pkg/account"
	"github.com/coldvault/vault/pkg/store"
)

// Server wires the domain (pkg/store, pkg/account) to a gin router. It
// holds no package-level state; every dependency is passed into New.
type Server struct {
	store       *store.Store
	accounts    *account.Registry
	logger      *logrus.Logger
	saveDir     string
	requireAuth bool

	sessMu   sync.Mutex
	sessions map[string]string // token -> account name
}

// Options configures a new Server.
type Options struct {
	SaveDir     string
	RequireAuth bool
}

// New builds a Server over an existing store and account registry.
func New(st *store.Store, accounts *account.Registry, logger *logrus.Logger, opts Options) *Server {
	return &Server{
		store:       st,
		accounts:    accounts,
		logger:      logger,
		saveDir:     opts.SaveDir,
		requireAuth: opts.RequireAuth,
		sessions:    make(map[string]string),
	}
}

// Router builds the gin.Engine exposing the create/login/push/pull/list
// endpoints.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/create", s.handleCreate)
	r.POST("/login", s.handleLogin)

	push := r.Group("/push")
	pull := r.Group("/pull")
	if s.requireAuth {
		push.Use(s.requireSession())
		pull.Use(s.requireSession())
	}
	push.POST("", s.handlePush)
	pull.GET("", s.handlePull)

	r.GET("/list", s.handleList)

	return r
}

func (s *Server) newSessionToken(accountName string) string {
	token := uuid.NewString()

	s.sessMu.Lock()
	s.sessions[token] = accountName
	s.sessMu.Unlock()
	return token
}

func (s *Server) sessionAccount(token string) (string, bool) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	name, ok := s.sessions[token]
	return name, ok
}
