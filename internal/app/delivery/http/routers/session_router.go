package routers

import (
	"screener-service/internal/app/delivery/http/middlewares"
	"screener-service/internal/app/services/core/sessions"

	"github.com/go-chi/chi/v5"
)

func attachSessionRoutes(router chi.Router, middlewares *middlewares.Middlewares, sessionController *sessions.SessionController) {
	submitLimiter := middlewares.SubmitRateLimiter()

	router.Get("/{sessionID}", sessionController.GetSession)
	router.Put("/{sessionID}/answers", sessionController.AnswerQuestion)
	router.Post("/{sessionID}/reset", sessionController.ResetSession)
	router.With(submitLimiter.Limit).Post("/{sessionID}/submit", sessionController.SubmitSession)
}
