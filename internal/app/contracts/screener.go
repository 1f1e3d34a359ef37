package contracts

import (
	"context"

	"screener-service/internal/pkg/screener"
)

// ScreenerSource fetches raw screener definitions by type, e.g. glp1.
type ScreenerSource interface {
	Name() string
	Fetch(ctx context.Context, screenerType string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// ScreenerRegistry hands out parsed screeners together with their profile.
type ScreenerRegistry interface {
	Get(ctx context.Context, screenerType string) (*screener.Screener, screener.Profile, error)
	RuleTable() *screener.RuleTable
	Invalidate(screenerType string)
}
