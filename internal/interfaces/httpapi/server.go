package httpapi

import (
	"net/http"

	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
)

type middleware func(http.Handler) http.Handler

type route struct {
	pattern string
	handle  http.HandlerFunc
}

// NewRouter serves the read-only query API. Middlewares run outermost first:
// tracing, logging, CORS, panic recovery.
func NewRouter(handler *Handler, logger *logging.Logger, docsEnabled bool, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	for _, rt := range handler.routes(docsEnabled) {
		mux.HandleFunc(rt.pattern, rt.handle)
	}

	return chain(mux,
		RequestTracing,
		func(next http.Handler) http.Handler { return RequestLogging(logger, next) },
		func(next http.Handler) http.Handler { return CORS(corsAllowedOrigins, next) },
		func(next http.Handler) http.Handler { return recoverPanic(logger, next) },
	)
}

func (h *Handler) routes(docsEnabled bool) []route {
	routes := []route{
		{"GET /healthz", h.Healthz},
		{"GET /v1/leagues", h.ListLeagues},
		{"GET /v1/leagues/{leagueID}", h.GetLeague},
		// literal segments win over {playerID}
		{"GET /v1/players/search", h.SearchPlayers},
		{"GET /v1/players/top", h.TopPlayers},
		{"GET /v1/players/{playerID}", h.GetPlayer},
		{"GET /v1/players/{playerID}/valuations", h.ListPlayerValuations},
	}
	if docsEnabled {
		routes = append(routes,
			route{"GET /openapi.yaml", h.OpenAPI},
			route{"GET /docs", h.Docs},
		)
	}
	return routes
}

func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				writeInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
