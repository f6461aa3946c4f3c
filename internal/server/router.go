package server

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbarreto/botcore/internal/core"
)

// Router provides embeddable HTTP handlers over a Core.
// Endpoints:
//
//	POST {basePath}/message       body: {"message": "...", "user_id": "..."}
//	GET  {basePath}/health        health snapshot for all configured services
//	GET  {basePath}/events        query: since=RFC3339 (optional)
//	GET  {basePath}/errors/stats
//	POST {basePath}/errors/reset
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	core     *core.Core
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/message, /api/health, ...
func NewRouter(c *core.Core, basePath string) *Router {
	return &Router{core: c, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/message", r.handleMessage)
	group.GET("/health", r.handleHealth)
	group.GET("/events", r.handleEvents)
	group.GET("/errors/stats", r.handleErrorStats)
	group.POST("/errors/reset", r.handleErrorReset)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Shut it down via http.Server's Close or Shutdown.
func NewServer(addr, basePath string, c *core.Core) (*http.Server, error) {
	return NewServerTLS(addr, basePath, c, nil)
}

// NewServerTLS is NewServer with an optional TLS configuration for the
// listener; a nil tlsConf serves plain HTTP.
func NewServerTLS(addr, basePath string, c *core.Core, tlsConf *tls.Config) (*http.Server, error) {
	r := NewRouter(c, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		TLSConfig:         tlsConf,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if tlsConf != nil {
		go func() { _ = server.ListenAndServeTLS("", "") }()
	} else {
		go func() { _ = server.ListenAndServe() }()
	}
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type messageReq struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

func (r *Router) handleMessage(c *gin.Context) {
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Message == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "message required"})
		return
	}
	reply := r.core.HandleMessage(c.Request.Context(), req.Message, req.UserID)
	if !reply.Answered {
		// No interception and no collaborator answered; the caller
		// proceeds to its own domain handling.
		c.Status(http.StatusNoContent)
		return
	}
	writeJSON(c, http.StatusOK, reply)
}

func (r *Router) handleHealth(c *gin.Context) {
	snapshot := r.core.Prober.CheckAll(c.Request.Context())
	writeJSON(c, http.StatusOK, snapshot)
}

func (r *Router) handleEvents(c *gin.Context) {
	var since *time.Time
	if s := c.Query("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid since: " + err.Error()})
			return
		}
		since = &t
	}
	events, err := r.core.Events.Replay(since)
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, events)
}

func (r *Router) handleErrorStats(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.core.Errors.Stats())
}

func (r *Router) handleErrorReset(c *gin.Context) {
	r.core.Errors.ResetStats()
	writeJSON(c, http.StatusOK, okResp{OK: true})
}
