package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"screener-service/internal/app/config"
	"screener-service/internal/app/contracts"
	"screener-service/internal/app/models"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/dto/requests"
	"screener-service/internal/pkg/dto/responses"
	"screener-service/internal/pkg/exceptions"
	"screener-service/internal/pkg/routing"
	"screener-service/internal/pkg/screener"
	"screener-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSessionTTL     = 60 * time.Minute
	defaultLockTTL        = 10 * time.Second
	defaultPublishTimeout = 15 * time.Second
)

// Business events.
const (
	EventSessionStarted       = "screening_session_started"
	EventRespondentDisqualify = "screening_respondent_disqualified"
	EventSessionSubmitted     = "screening_session_submitted"
)

type sessionUsecase struct {
	Log            *zap.Logger
	Registry       contracts.ScreenerRegistry
	Store          contracts.SessionStore
	Locker         contracts.LockerService
	Publisher      contracts.SubmissionPublisher
	Composer       *routing.Composer
	RootDomain     string
	SessionTTL     time.Duration
	LockTTL        time.Duration
	PublishTimeout time.Duration

	now      func() time.Time
	newID    func() string
	inflight sync.WaitGroup
}

// NewSessionUsecase wires the session flow. publisher may be nil, in which
// case submissions are evaluated and routed but not delivered.
func NewSessionUsecase(
	logger *zap.Logger,
	cfg *config.InternalConfig,
	registry contracts.ScreenerRegistry,
	store contracts.SessionStore,
	lockerService contracts.LockerService,
	publisher contracts.SubmissionPublisher,
	composer *routing.Composer,
) SessionUsecase {
	sessionTTL := time.Duration(cfg.Session.ExpiredTimeInMinutes) * time.Minute
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	lockTTL := time.Duration(cfg.Session.LockExpiredTimeInSecs) * time.Second
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	publishTimeout := time.Duration(cfg.Webhook.HTTPTimeoutInSeconds) * time.Second
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}

	return &sessionUsecase{
		Log:            logger,
		Registry:       registry,
		Store:          store,
		Locker:         lockerService,
		Publisher:      publisher,
		Composer:       composer,
		RootDomain:     cfg.Routing.RootDomain,
		SessionTTL:     sessionTTL,
		LockTTL:        lockTTL,
		PublishTimeout: publishTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (uc *sessionUsecase) CreateSession(ctx context.Context, screenerType string, request *requests.StartSession) (*responses.Session, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.CreateSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingScreenerTypeKey, screenerType),
	)

	sc, profile, err := uc.Registry.Get(ctx, screenerType)
	if err != nil {
		return nil, err
	}

	session := uc.newScreenerSession(sc, profile)
	var eval screener.Evaluation
	if request != nil && len(request.Responses) > 0 {
		eval, err = session.Load(toSnapshot(sc, request.Responses))
		if err != nil {
			return nil, answerError(sc, err, "")
		}
	} else {
		eval = session.Evaluate()
	}

	now := uc.now().UTC()
	stored := &models.ScreenerSession{
		SessionID:    uc.newID(),
		ScreenerType: screenerType,
		Responses:    fromSnapshot(session.Snapshot()),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Store.Save(ctx, stored, uc.SessionTTL); err != nil {
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, EventSessionStarted, requestID,
		zap.String(constvars.LoggingSessionIDKey, stored.SessionID),
		zap.String(constvars.LoggingScreenerTypeKey, screenerType),
	)
	uc.logDisqualification(requestID, stored.SessionID, eval.Decision)
	return toSessionResponse(stored, sc, eval), nil
}

func (uc *sessionUsecase) GetSession(ctx context.Context, sessionID string) (*responses.Session, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.GetSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	stored, err := uc.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sc, session, err := uc.restore(ctx, stored)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(stored, sc, session.Evaluate()), nil
}

func (uc *sessionUsecase) AnswerQuestion(ctx context.Context, sessionID string, request *requests.AnswerQuestion) (*responses.Session, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.AnswerQuestion called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
		zap.String(constvars.LoggingQuestionIDKey, request.QuestionID),
	)

	var response *responses.Session
	err := uc.withLock(ctx, sessionID, func() error {
		stored, err := uc.findOpenSession(ctx, sessionID)
		if err != nil {
			return err
		}
		sc, session, err := uc.restore(ctx, stored)
		if err != nil {
			return err
		}

		id, ok := sc.Resolve(request.QuestionID)
		if !ok {
			return exceptions.ErrUnknownQuestion(fmt.Errorf("%w: %q", screener.ErrUnknownQuestion, request.QuestionID), request.QuestionID)
		}
		eval, err := session.Answer(id, request.Values...)
		if err != nil {
			return answerError(sc, err, id)
		}

		stored.Responses = fromSnapshot(session.Snapshot())
		stored.UpdatedAt = uc.now().UTC()
		if err := uc.Store.Save(ctx, stored, uc.SessionTTL); err != nil {
			return err
		}

		if len(eval.Cleared) > 0 {
			uc.Log.Info("sessionUsecase.AnswerQuestion cleared hidden answers",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingSessionIDKey, sessionID),
				zap.Strings(constvars.LoggingClearedKey, questionIDs(eval.Cleared)),
			)
		}
		uc.logDisqualification(requestID, sessionID, eval.Decision)
		response = toSessionResponse(stored, sc, eval)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (uc *sessionUsecase) ResetSession(ctx context.Context, sessionID string) (*responses.Session, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.ResetSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	var response *responses.Session
	err := uc.withLock(ctx, sessionID, func() error {
		stored, err := uc.findOpenSession(ctx, sessionID)
		if err != nil {
			return err
		}
		sc, session, err := uc.restore(ctx, stored)
		if err != nil {
			return err
		}

		session.Reset()
		stored.Responses = map[string][]string{}
		stored.UpdatedAt = uc.now().UTC()
		if err := uc.Store.Save(ctx, stored, uc.SessionTTL); err != nil {
			return err
		}
		response = toSessionResponse(stored, sc, session.Evaluate())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (uc *sessionUsecase) SubmitSession(ctx context.Context, sessionID string, request *requests.SubmitSession) (*responses.Submission, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.SubmitSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	var response *responses.Submission
	err := uc.withLock(ctx, sessionID, func() error {
		stored, err := uc.findOpenSession(ctx, sessionID)
		if err != nil {
			return err
		}
		sc, session, err := uc.restore(ctx, stored)
		if err != nil {
			return err
		}

		// an early disqualification is submitted with whatever was answered
		if d := session.Evaluate().Decision; d.Outcome != screener.OutcomeDisqualify {
			if errs := session.Validate(); len(errs) > 0 {
				return exceptions.ErrSubmissionInvalid(errs)
			}
		}

		now := uc.now().UTC()
		submission, eval := session.Submission(now)
		profile := session.Profile()

		message, err := screener.RenderMessage(eval.Decision, screener.NewMessageData(profile, eval.Metrics))
		if err != nil {
			return exceptions.ErrScreenerConfiguration(err)
		}

		target, err := uc.Composer.Compose(eval.Decision, category(sc, profile), uc.redirectContext(sc, session, request))
		if err != nil {
			return exceptions.ErrRoutingCompose(err)
		}

		stored.SubmittedAt = &now
		stored.UpdatedAt = now
		if err := uc.Store.Save(ctx, stored, uc.SessionTTL); err != nil {
			return err
		}

		queued, err := uc.dispatch(ctx, stored, submission, now)
		if err != nil {
			return err
		}

		utils.LogBusinessEvent(uc.Log, EventSessionSubmitted, requestID,
			zap.String(constvars.LoggingSessionIDKey, sessionID),
			zap.String(constvars.LoggingFormTypeKey, submission.FormType),
			zap.String(constvars.LoggingOutcomeKey, string(eval.Decision.Outcome)),
			zap.String(constvars.LoggingRuleIDKey, eval.Decision.RuleID),
		)

		redirect, signal := toRedirectResponse(target)
		response = &responses.Submission{
			SessionID: sessionID,
			Decision:  toDecisionResponse(eval.Decision),
			Message:   toMessageResponse(message),
			Redirect:  redirect,
			Signal:    signal,
			Queued:    queued,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (uc *sessionUsecase) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch hands the submission to the publisher without waiting for the
// delivery outcome. Delivery errors are logged only.
func (uc *sessionUsecase) dispatch(ctx context.Context, stored *models.ScreenerSession, submission screener.Submission, at time.Time) (bool, error) {
	if uc.Publisher == nil {
		return false, nil
	}

	body, err := json.Marshal(submission)
	if err != nil {
		return false, exceptions.ErrCannotMarshalJSON(err)
	}
	msg := &models.SubmissionMessage{
		ID:           uc.newID(),
		SessionID:    stored.SessionID,
		ScreenerType: stored.ScreenerType,
		FormType:     submission.FormType,
		Body:         body,
		CreatedAt:    at,
	}

	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.PublishTimeout)

	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		defer cancel()
		if err := uc.Publisher.Publish(publishCtx, msg); err != nil {
			uc.Log.Error("sessionUsecase.dispatch submission delivery failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingSessionIDKey, stored.SessionID),
				zap.String(constvars.LoggingMessageIDKey, msg.ID),
				zap.Error(err),
			)
		}
	}()
	return true, nil
}

func (uc *sessionUsecase) withLock(ctx context.Context, sessionID string, fn func() error) error {
	key := fmt.Sprintf(constvars.RedisKeySessionLockFormat, sessionID)
	acquired, lockValue, err := uc.Locker.TryLock(ctx, key, uc.LockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return exceptions.ErrSessionLocked(nil, sessionID)
	}
	defer func() {
		if err := uc.Locker.Unlock(context.WithoutCancel(ctx), key, lockValue); err != nil {
			uc.Log.Warn("sessionUsecase.withLock unlock failed",
				zap.String(constvars.LoggingSessionIDKey, sessionID),
				zap.Error(err),
			)
		}
	}()
	return fn()
}

func (uc *sessionUsecase) findSession(ctx context.Context, sessionID string) (*models.ScreenerSession, error) {
	stored, err := uc.Store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, exceptions.ErrSessionNotFound(nil, sessionID)
	}
	return stored, nil
}

func (uc *sessionUsecase) findOpenSession(ctx context.Context, sessionID string) (*models.ScreenerSession, error) {
	stored, err := uc.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored.Submitted() {
		return nil, exceptions.ErrSessionSubmitted(nil, sessionID)
	}
	return stored, nil
}

func (uc *sessionUsecase) newScreenerSession(sc *screener.Screener, profile screener.Profile) *screener.Session {
	return screener.NewSession(sc, uc.Registry.RuleTable(),
		screener.WithProfile(profile),
		screener.WithClock(uc.now),
	)
}

// restore rebuilds the in-memory session from its stored answers. Answers
// the current definition no longer accepts are dropped.
func (uc *sessionUsecase) restore(ctx context.Context, stored *models.ScreenerSession) (*screener.Screener, *screener.Session, error) {
	sc, profile, err := uc.Registry.Get(ctx, stored.ScreenerType)
	if err != nil {
		return nil, nil, err
	}

	session := uc.newScreenerSession(sc, profile)
	_, dropped := session.LoadAccepted(toSnapshot(sc, stored.Responses))
	if len(dropped) == 0 {
		return sc, session, nil
	}

	uc.Log.Warn("sessionUsecase.restore dropped answers rejected by the current screener",
		zap.String(constvars.LoggingSessionIDKey, stored.SessionID),
		zap.String(constvars.LoggingScreenerTypeKey, stored.ScreenerType),
		zap.Strings("dropped_questions", questionIDs(dropped)),
	)
	stored.Responses = fromSnapshot(session.Snapshot())
	return sc, session, nil
}

func (uc *sessionUsecase) redirectContext(sc *screener.Screener, session *screener.Session, request *requests.SubmitSession) routing.RedirectContext {
	rc := routing.RedirectContext{RootDomain: uc.RootDomain}
	if request != nil {
		if request.RootDomain != "" {
			rc.RootDomain = request.RootDomain
		}
		if len(request.Params) > 0 {
			rc.Params = url.Values{}
			for k, v := range request.Params {
				rc.Params.Set(k, v)
			}
		}
	}

	answers := session.Snapshot()
	first := func(id screener.QuestionID) string {
		if v := answers[id]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	byField := func(field string) string {
		if id, ok := sc.Resolve(field); ok {
			return first(id)
		}
		return ""
	}

	rc.Name = byField("name")
	if rc.Name == "" {
		rc.Name = strings.TrimSpace(byField("first_name") + " " + byField("last_name"))
	}
	if q, ok := sc.FirstOfType(screener.InputEmail); ok {
		rc.Email = first(q.ID)
	}
	if q, ok := sc.FirstOfType(screener.InputPhone); ok {
		rc.Phone = screener.NormalizePhone(first(q.ID))
	}
	return rc
}

func (uc *sessionUsecase) logDisqualification(requestID, sessionID string, d screener.Decision) {
	if d.Outcome != screener.OutcomeDisqualify {
		return
	}
	utils.LogBusinessEvent(uc.Log, EventRespondentDisqualify, requestID,
		zap.String(constvars.LoggingSessionIDKey, sessionID),
		zap.String(constvars.LoggingRuleIDKey, d.RuleID),
		zap.Bool("safety_critical", d.SafetyCritical()),
	)
}

func category(sc *screener.Screener, profile screener.Profile) string {
	if sc.Category != "" {
		return sc.Category
	}
	return profile.Category
}

// answerError maps screener answer failures onto API errors.
func answerError(sc *screener.Screener, err error, id screener.QuestionID) error {
	if errors.Is(err, screener.ErrUnknownQuestion) {
		return exceptions.ErrUnknownQuestion(err, string(id))
	}
	var cerr *screener.ConfigurationError
	if errors.As(err, &cerr) {
		if cerr.QuestionID != "" {
			id = cerr.QuestionID
		}
		if !sc.Has(id) {
			return exceptions.ErrUnknownQuestion(err, string(id))
		}
	}
	return exceptions.ErrAnswerRejected(err, string(id))
}
