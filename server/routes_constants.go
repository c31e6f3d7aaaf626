package server

const (
	RouteAPIRequest = "/api/request"
	RouteAPISession = "/api/session"
	RouteAPIHealth  = "/api/health"
)
