package server

func (s *Server) initRoutes() {
	// Relay API
	s.RegisterRouteHandler("POST "+RouteAPIRequest, ChainMiddleware(s.RelayHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionInfoHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// CORS preflight for the whole API surface. CorsMiddleware answers
	// OPTIONS itself; the inner handler is only reached without an Origin.
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Test console. "GET /" is the ServeMux catch-all, giving SPA-style
	// fallback for every path outside /api/.
	s.RegisterRouteFunc("GET /", ChainMiddleware(s.ConsoleHandler(), s.ConsoleMiddleware()...))
}
