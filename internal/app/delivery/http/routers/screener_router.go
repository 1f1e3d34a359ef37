package routers

import (
	"screener-service/internal/app/delivery/http/middlewares"
	"screener-service/internal/app/services/core/screeners"
	"screener-service/internal/app/services/core/sessions"

	"github.com/go-chi/chi/v5"
)

func attachScreenerRoutes(router chi.Router, middlewares *middlewares.Middlewares, screenerController *screeners.ScreenerController, sessionController *sessions.SessionController) {
	router.Get("/{screenerType}", screenerController.GetScreener)
	router.With(middlewares.LimitSessionCreation).Post("/{screenerType}/sessions", sessionController.CreateSession)
}
