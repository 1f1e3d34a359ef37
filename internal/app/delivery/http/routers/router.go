package routers

import (
	"net/http"

	"screener-service/internal/app/config"
	"screener-service/internal/app/delivery/http/middlewares"
	"screener-service/internal/app/services/core/screeners"
	"screener-service/internal/app/services/core/sessions"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/dto/responses"
	"screener-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	screenerController *screeners.ScreenerController,
	sessionController *sessions.SessionController,
) {
	corsOptions := cors.Options{
		AllowedOrigins: internalConfig.App.CORSAllowedOrigins,
		AllowedMethods: []string{
			constvars.MethodGet,
			constvars.MethodPost,
			constvars.MethodPut,
			constvars.MethodOptions,
		},
		AllowedHeaders: []string{
			constvars.HeaderAccept,
			constvars.HeaderContentType,
			constvars.HeaderXRequestID,
			constvars.HeaderXScreenerRoot,
		},
		ExposedHeaders: []string{constvars.HeaderXRequestID, constvars.HeaderRetryAfter},
		MaxAge:         300,
	}
	router.Use(cors.Handler(corsOptions))

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging(middlewares.Log))
	router.Use(middlewares.ErrorHandler)
	router.Use(middlewares.IPRateLimit())
	router.Use(middlewares.LimitBody)

	router.Route(internalConfig.App.EndpointPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler(internalConfig))

		r.Route("/"+constvars.ResourceScreeners, func(r chi.Router) {
			attachScreenerRoutes(r, middlewares, screenerController, sessionController)
		})

		r.Route("/"+constvars.ResourceSessions, func(r chi.Router) {
			attachSessionRoutes(r, middlewares, sessionController)
		})
	})
}

func healthHandler(internalConfig *config.InternalConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.HealthCheckSuccessMessage, responses.Health{
			Status:      "ok",
			Version:     internalConfig.App.Version,
			Environment: internalConfig.App.Env,
		})
	}
}
