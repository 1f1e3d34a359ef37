package screeners

import (
	"context"

	"screener-service/internal/app/contracts"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/dto/responses"
	"screener-service/internal/pkg/screener"

	"go.uber.org/zap"
)

type screenerUsecase struct {
	Log      *zap.Logger
	Registry contracts.ScreenerRegistry
}

func NewScreenerUsecase(logger *zap.Logger, registry contracts.ScreenerRegistry) ScreenerUsecase {
	return &screenerUsecase{
		Log:      logger,
		Registry: registry,
	}
}

func (uc *screenerUsecase) GetScreener(ctx context.Context, screenerType string) (*responses.Screener, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("screenerUsecase.GetScreener called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingScreenerTypeKey, screenerType),
	)

	sc, profile, err := uc.Registry.Get(ctx, screenerType)
	if err != nil {
		return nil, err
	}
	return ToScreenerResponse(sc, profile), nil
}

// ToScreenerResponse renders a parsed screener for the host page. Questions
// with a configuration error are kept but marked unavailable.
func ToScreenerResponse(sc *screener.Screener, profile screener.Profile) *responses.Screener {
	out := &responses.Screener{
		Type:      sc.Type,
		Category:  sc.Category,
		FormType:  profile.FormType,
		Questions: make([]responses.Question, 0, len(sc.Questions())),
	}
	if out.Category == "" {
		out.Category = profile.Category
	}

	for _, q := range sc.Questions() {
		out.Questions = append(out.Questions, responses.Question{
			ID:            string(q.ID),
			Name:          q.Name,
			Text:          q.Text,
			Section:       q.Section,
			InputType:     q.InputType.String(),
			Options:       q.Options(),
			Required:      q.Required,
			ShowCondition: q.ShowCondition.String(),
			Unavailable:   q.ConfigErr != nil,
		})
	}
	for _, cerr := range sc.ConfigurationErrors() {
		out.ConfigurationErrors = append(out.ConfigurationErrors, cerr.Error())
	}
	return out
}
