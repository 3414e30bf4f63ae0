// Package agent exposes the offline agent over HTTP: a catch-all
// interception route serving the caching policies, plus the /__agent
// control surface the foreground application talks to.
package agent

import (
	"context"
	"net/http"
	"time"

	"github.com/AliGym19/voiceverse-sub001/cachestore"
	"github.com/AliGym19/voiceverse-sub001/classify"
	"github.com/AliGym19/voiceverse-sub001/connectivity"
	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/lifecycle"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/AliGym19/voiceverse-sub001/notify"
	"github.com/AliGym19/voiceverse-sub001/policy"
	"github.com/AliGym19/voiceverse-sub001/queue"
	"github.com/AliGym19/voiceverse-sub001/relay"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Fetcher forwards mutating requests to the origin. Satisfied by
// *fetch.Client.
type Fetcher interface {
	Do(ctx context.Context, method, url string, body []byte, header http.Header) (*fetch.Response, error)
}

// Deps bundles the components the server routes to.
type Deps struct {
	Classifier  *classify.Classifier
	Fetcher     Fetcher
	Policy      *policy.Engine
	Lifecycle   *lifecycle.Controller
	Queue       *queue.Queue
	Coordinator *queue.Coordinator
	Monitor     *connectivity.Monitor
	Dispatcher  *relay.Dispatcher
	Stores      *cachestore.Manager
	Notifier    notify.Notifier
}

// Server is the agent's HTTP front.
type Server struct {
	engine *gin.Engine
	deps   Deps
	http   *http.Server
	log    *logger.CtxZapLogger
}

// NewServer builds the gin engine and registers every route.
func NewServer(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		deps:   deps,
		log:    logger.GetLogger("agent"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	control := s.engine.Group("/__agent")
	{
		control.POST("/message", s.handleMessage)
		control.POST("/push", s.handlePush)
		control.POST("/connectivity", s.handleConnectivity)
		control.GET("/queue", s.handleQueueList)
		control.POST("/queue/:id/retry", s.handleQueueRetry)
	}

	// Everything else is an intercepted application request.
	s.engine.NoRoute(s.handleIntercept)
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves on addr until the context is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("agent listening", zap.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("agent shutting down")
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	OkJSON(c, gin.H{
		"state":   s.deps.Lifecycle.State().String(),
		"version": s.deps.Lifecycle.Version(),
		"online":  s.deps.Monitor.Online(),
	})
}
