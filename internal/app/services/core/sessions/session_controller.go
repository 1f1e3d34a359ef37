package sessions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"screener-service/internal/app/services/shared/screenersource"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/dto/requests"
	"screener-service/internal/pkg/exceptions"
	"screener-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type SessionController struct {
	Log            *zap.Logger
	SessionUsecase SessionUsecase
}

func NewSessionController(logger *zap.Logger, sessionUsecase SessionUsecase) *SessionController {
	return &SessionController{
		Log:            logger,
		SessionUsecase: sessionUsecase,
	}
}

func (ctrl *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	screenerType, err := screenersource.NormalizeType(chi.URLParam(r, constvars.URLParamScreenerType))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	request := new(requests.StartSession)
	if err := utils.DecodeJSONBody(r, request, true); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.SessionUsecase.CreateSession(ctx, screenerType, request)
	if err != nil {
		ctrl.handleError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateSessionSuccessMessage, response)
}

func (ctrl *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.SessionUsecase.GetSession(ctx, sessionID)
	if err != nil {
		ctrl.handleError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetSessionSuccessMessage, response)
}

func (ctrl *SessionController) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	request := new(requests.AnswerQuestion)
	if err := utils.DecodeJSONBody(r, request, false); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.SessionUsecase.AnswerQuestion(ctx, sessionID, request)
	if err != nil {
		ctrl.handleError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AnswerQuestionSuccessMessage, response)
}

func (ctrl *SessionController) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.SessionUsecase.ResetSession(ctx, sessionID)
	if err != nil {
		ctrl.handleError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResetSessionSuccessMessage, response)
}

func (ctrl *SessionController) SubmitSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	request := new(requests.SubmitSession)
	if err := utils.DecodeJSONBody(r, request, true); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	if request.RootDomain == "" {
		request.RootDomain = r.Header.Get(constvars.HeaderXScreenerRoot)
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.SessionUsecase.SubmitSession(ctx, sessionID, request)
	if err != nil {
		ctrl.handleError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SubmitSessionSuccessMessage, response)
}

func (ctrl *SessionController) handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}

func sessionIDParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, constvars.URLParamSessionID)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", exceptions.ErrURLParamValidation(err, constvars.URLParamSessionID)
	}
	return id.String(), nil
}
