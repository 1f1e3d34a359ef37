package screeners

import (
	"context"

	"screener-service/internal/pkg/dto/responses"
)

type ScreenerUsecase interface {
	GetScreener(ctx context.Context, screenerType string) (*responses.Screener, error)
}
