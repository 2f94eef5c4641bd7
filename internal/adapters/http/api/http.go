// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// Default leaderboard sizes used when the server is built without options.
// The reward aggregator pays the top 5 curators.
const (
	defaultLeaderboardSize = 5
	defaultLeaderboardMax  = 1_000
	maxBodyBytes           = 32 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LikeDependencies
	ProjectDependencies
	LeaderboardDependencies
	CuratorDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	likesHandler       *LikesHandler
	projectsHandler    *ProjectsHandler
	leaderboardHandler *LeaderboardHandler
	curatorHandler     *CuratorHandler
}

type serverOptions struct {
	leaderboardSize int
	leaderboardMax  int
}

// Option configures the Server.
type Option func(*serverOptions)

// WithLeaderboardLimits sets the default and maximum leaderboard page size.
func WithLeaderboardLimits(size, limit int) Option {
	return func(o *serverOptions) {
		if limit > 0 {
			o.leaderboardMax = limit
		}
		if size > 0 {
			o.leaderboardSize = size
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{leaderboardSize: defaultLeaderboardSize, leaderboardMax: defaultLeaderboardMax}
	for _, opt := range opts {
		opt(&o)
	}
	if o.leaderboardSize > o.leaderboardMax {
		o.leaderboardSize = o.leaderboardMax
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		likesHandler:       NewLikesHandler(deps),
		projectsHandler:    NewProjectsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, o.leaderboardSize, o.leaderboardMax),
		curatorHandler:     NewCuratorHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /likes", MetricsMiddleware(s.likesHandler.HandlePostLike, "likes"))
	mux.HandleFunc("PUT /projects", MetricsMiddleware(s.projectsHandler.HandlePutProjects, "projects"))
	mux.HandleFunc("GET /projects", MetricsMiddleware(s.projectsHandler.HandleGetProjects, "projects"))
	mux.HandleFunc("PUT /projects/{id}", MetricsMiddleware(s.projectsHandler.HandlePutProject, "project"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /curators/{address}", MetricsMiddleware(s.curatorHandler.HandleGetCurator, "curators"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
