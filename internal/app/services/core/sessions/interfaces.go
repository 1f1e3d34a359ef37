package sessions

import (
	"context"

	"screener-service/internal/pkg/dto/requests"
	"screener-service/internal/pkg/dto/responses"
)

type SessionUsecase interface {
	CreateSession(ctx context.Context, screenerType string, request *requests.StartSession) (*responses.Session, error)
	GetSession(ctx context.Context, sessionID string) (*responses.Session, error)
	AnswerQuestion(ctx context.Context, sessionID string, request *requests.AnswerQuestion) (*responses.Session, error)
	ResetSession(ctx context.Context, sessionID string) (*responses.Session, error)
	SubmitSession(ctx context.Context, sessionID string, request *requests.SubmitSession) (*responses.Submission, error)
	// Wait blocks until submissions handed to the publisher have finished
	// or ctx is done.
	Wait(ctx context.Context) error
}
