package screeners

import (
	"context"
	"errors"
	"net/http"
	"time"

	"screener-service/internal/app/services/shared/screenersource"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"
	"screener-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type ScreenerController struct {
	Log             *zap.Logger
	ScreenerUsecase ScreenerUsecase
}

func NewScreenerController(logger *zap.Logger, screenerUsecase ScreenerUsecase) *ScreenerController {
	return &ScreenerController{
		Log:             logger,
		ScreenerUsecase: screenerUsecase,
	}
}

func (ctrl *ScreenerController) GetScreener(w http.ResponseWriter, r *http.Request) {
	screenerType, err := screenersource.NormalizeType(chi.URLParam(r, constvars.URLParamScreenerType))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.ScreenerUsecase.GetScreener(ctx, screenerType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetScreenerSuccessMessage, response)
}
