package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/saclabs/sac-relay/internal/config"
	"github.com/saclabs/sac-relay/sac"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config
	sac    *sac.Client

	// upstreamSlots bounds how many relay calls may be in flight against
	// SAC at once, so one slow upstream call cannot starve the rest of the
	// process. Requests queue on the semaphore, not the dispatcher.
	upstreamSlots *semaphore.Weighted
}

func New(cfg config.Config, client *sac.Client) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		config:        cfg,
		sac:           client,
		upstreamSlots: semaphore.NewWeighted(cfg.GetMaxConcurrentUpstreamCalls()),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%s] %s", colourMethod(method), path)
}
