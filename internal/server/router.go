package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/hookrelay/internal/dispatcher"
)

// Router provides embeddable HTTP handlers for the dispatcher.
// Endpoints:
//   POST {basePath}/dispatch   body: hook event payload JSON
//   GET  {basePath}/healthz
// The dispatch response is the same Dispatch Result the CLI prints:
// 200 for started/skipped, 500 for error, 400 for malformed JSON.
// basePath may be empty or start with '/'; no trailing slash.

type Router struct {
	disp     *dispatcher.Dispatcher
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/hooks" results in /hooks/dispatch, /hooks/healthz.
func NewRouter(disp *dispatcher.Dispatcher, basePath string) *Router {
	bp := sanitizeBase(basePath)
	return &Router{disp: disp, basePath: bp}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/dispatch", r.handleDispatch)
	group.GET("/healthz", r.handleHealthz)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// The caller shuts it down via the returned http.Server.
func NewServer(addr, basePath string, disp *dispatcher.Dispatcher) (*http.Server, error) {
	r := NewRouter(disp, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

func (r *Router) handleDispatch(c *gin.Context) {
	p, err := dispatcher.ParsePayload(c.Request.Body)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	res := r.disp.Dispatch(c.Request.Context(), p)
	code := http.StatusOK
	if res.Status == dispatcher.StatusError {
		code = http.StatusInternalServerError
	}
	writeJSON(c, code, res)
}

// handleHealthz reports service liveness plus the gateway probe state.
// A down gateway still returns 200: the dispatcher itself is healthy
// and will skip events until the gateway comes back.
func (r *Router) handleHealthz(c *gin.Context) {
	alive, desc := r.disp.GatewayState()
	writeJSON(c, http.StatusOK, gin.H{"ok": true, "gateway_alive": alive, "gateway": desc})
}
