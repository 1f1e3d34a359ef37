package sessions

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"screener-service/internal/app/config"
	"screener-service/internal/app/contracts"
	"screener-service/internal/app/models"
	"screener-service/internal/app/services/shared/locker"
	"screener-service/internal/app/services/shared/redis"
	"screener-service/internal/app/services/shared/screenersource"
	"screener-service/internal/app/services/shared/sessionstore"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/dto/requests"
	"screener-service/internal/pkg/exceptions"
	"screener-service/internal/pkg/routing"
	"screener-service/internal/pkg/screener"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const screenerDir = "../../../../../configs/screeners"

var testNow = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []models.SubmissionMessage
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *models.SubmissionMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, *msg)
	return p.err
}

func (p *recordingPublisher) published() []models.SubmissionMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.SubmissionMessage(nil), p.messages...)
}

type fixture struct {
	uc        *sessionUsecase
	locker    contracts.LockerService
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureFor(t, screenerDir)
}

func newFixtureFor(t *testing.T, dir string) *fixture {
	t.Helper()
	log := zap.NewNop()
	repo := redis.NewMemoryRepository()
	registry := screenersource.NewRegistry(screenersource.NewFileSource(dir), screener.DefaultRuleTable(), time.Minute, log)
	lock := locker.NewLockService(repo, log)
	publisher := &recordingPublisher{}

	cfg := &config.InternalConfig{Routing: config.AppRouting{RootDomain: "clinic.example.com"}}
	uc := NewSessionUsecase(log, cfg, registry, sessionstore.NewSessionStore(repo, log), lock, publisher, routing.NewComposer()).(*sessionUsecase)
	uc.now = func() time.Time { return testNow }
	return &fixture{uc: uc, locker: lock, publisher: publisher}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var customErr *exceptions.CustomError
	require.True(t, errors.As(err, &customErr), "expected a CustomError, got %v", err)
	return customErr.StatusCode
}

var eligibleGLP1 = map[string][]string{
	"first_name":          {"Pat"},
	"last_name":           {"Doe"},
	"email":               {"pat@example.com"},
	"phone":               {"+1 (555) 123-4567"},
	"date_of_birth":       {"1990-01-01"},
	"gender":              {"male"},
	"height_feet":         {"5"},
	"height_inches":       {"10"},
	"weight":              {"180"},
	"depression":          {"no"},
	"chemotherapy":        {"no"},
	"glp1_allergy":        {"no"},
	"hba1c_high":          {"no"},
	"alcohol_amount":      {"none"},
	"tobacco":             {"no"},
	"family_history":      {"no"},
	"medical_conditions":  {"none"},
	"current_medications": {"none"},
}

func TestSessionUsecase(t *testing.T) {
	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")

	t.Run("Answers drive visibility and early disqualification", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "glp1", &requests.StartSession{})
		require.NoError(t, err)
		assert.Equal(t, "PROCEED", created.Decision.Outcome)
		assert.NotContains(t, created.VisibleQuestions, "pregnancy")

		got, err := f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "gender", Values: []string{"female"}})
		require.NoError(t, err)
		assert.Contains(t, got.VisibleQuestions, "pregnancy")
		assert.Contains(t, got.RequiredQuestions, "pregnancy")

		got, err = f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "depression", Values: []string{"yes"}})
		require.NoError(t, err)
		assert.Equal(t, "DISQUALIFY", got.Decision.Outcome)
		assert.True(t, got.Decision.SafetyCritical)
		assert.True(t, got.Stop)

		stored, err := f.uc.GetSession(ctx, created.SessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"yes"}, stored.Responses["depression"])
		assert.True(t, stored.Stop)
	})

	t.Run("Hidden answers are cleared and reported", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "glp1", &requests.StartSession{Responses: map[string][]string{
			"gender":    {"female"},
			"pregnancy": {"yes"},
		}})
		require.NoError(t, err)
		assert.Equal(t, "DISQUALIFY", created.Decision.Outcome)

		got, err := f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "gender", Values: []string{"male"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"pregnancy"}, got.ClearedQuestions)
		assert.Equal(t, "PROCEED", got.Decision.Outcome)
		_, kept := got.Responses["pregnancy"]
		assert.False(t, kept)
	})

	t.Run("Rejected answers map onto client errors", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "glp1", nil)
		require.NoError(t, err)

		_, err = f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "ghost", Values: []string{"x"}})
		assert.Equal(t, constvars.StatusBadRequest, statusOf(t, err))

		_, err = f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "gender", Values: []string{"robot"}})
		assert.Equal(t, constvars.StatusUnprocessableEntity, statusOf(t, err))

		_, err = f.uc.CreateSession(ctx, "glp1", &requests.StartSession{Responses: map[string][]string{"ghost": {"x"}}})
		assert.Equal(t, constvars.StatusBadRequest, statusOf(t, err))
	})

	t.Run("Unknown and busy sessions", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.GetSession(ctx, "3f0c3bde-64d4-4a8e-9b55-9a4f8a0d6c11")
		assert.Equal(t, constvars.StatusNotFound, statusOf(t, err))

		created, err := f.uc.CreateSession(ctx, "glp1", nil)
		require.NoError(t, err)
		ok, _, err := f.locker.TryLock(ctx, "screener:session:"+created.SessionID+":lock", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "gender", Values: []string{"male"}})
		assert.Equal(t, constvars.StatusConflict, statusOf(t, err))
	})

	t.Run("Reset clears answers and the decision", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "glp1", &requests.StartSession{Responses: map[string][]string{"chemotherapy": {"yes"}}})
		require.NoError(t, err)
		require.Equal(t, "DISQUALIFY", created.Decision.Outcome)

		reset, err := f.uc.ResetSession(ctx, created.SessionID)
		require.NoError(t, err)
		assert.Empty(t, reset.Responses)
		assert.Equal(t, "PROCEED", reset.Decision.Outcome)
		assert.False(t, reset.Stop)
	})

	t.Run("Incomplete submissions list the blocking fields", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "glp1", &requests.StartSession{Responses: map[string][]string{"email": {"nope"}}})
		require.NoError(t, err)

		_, err = f.uc.SubmitSession(ctx, created.SessionID, &requests.SubmitSession{})
		require.Error(t, err)
		var customErr *exceptions.CustomError
		require.True(t, errors.As(err, &customErr))
		assert.Equal(t, constvars.StatusUnprocessableEntity, customErr.StatusCode)

		errs, ok := customErr.Details.(screener.ValidationErrors)
		require.True(t, ok)
		e, found := errs.Field("email")
		require.True(t, found)
		assert.Equal(t, screener.ValidationEmail, e.Code)
		assert.Empty(t, f.publisher.published())
	})

	t.Run("Eligible submission routes to the fee page and is delivered", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "glp1", &requests.StartSession{Responses: eligibleGLP1})
		require.NoError(t, err)

		sub, err := f.uc.SubmitSession(ctx, created.SessionID, &requests.SubmitSession{Params: map[string]string{"utm_source": "ads"}})
		require.NoError(t, err)
		assert.Equal(t, "PROCEED", sub.Decision.Outcome)
		assert.True(t, sub.Queued)
		require.NotNil(t, sub.Redirect)
		require.NotNil(t, sub.Signal)

		u, err := url.Parse(sub.Redirect.URL)
		require.NoError(t, err)
		assert.Equal(t, "clinic.example.com", u.Host)
		assert.Equal(t, "/weightloss-fee", u.Path)
		assert.Equal(t, "Pat Doe", u.Query().Get("name"))
		assert.Equal(t, "+15551234567", u.Query().Get("phone"))
		assert.Equal(t, "ads", u.Query().Get("utm_source"))
		assert.Equal(t, "weightloss", sub.Signal.Category)
		assert.Equal(t, sub.Redirect.URL, sub.Signal.RedirectURL)

		require.NoError(t, f.uc.Wait(ctx))
		msgs := f.publisher.published()
		require.Len(t, msgs, 1)
		assert.Equal(t, "GLP1_Screening", msgs[0].FormType)
		assert.Equal(t, created.SessionID, msgs[0].SessionID)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(msgs[0].Body, &body))
		assert.Equal(t, "PROCEED", body["routing_outcome"])
		assert.Equal(t, "2026-06-15T10:00:00.000Z", body["timestamp"])

		_, err = f.uc.SubmitSession(ctx, created.SessionID, &requests.SubmitSession{})
		assert.Equal(t, constvars.StatusConflict, statusOf(t, err))
		_, err = f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "gender", Values: []string{"female"}})
		assert.Equal(t, constvars.StatusConflict, statusOf(t, err))
	})

	t.Run("Early disqualification submits partial answers without contact details", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "glp1", &requests.StartSession{Responses: map[string][]string{
			"first_name": {"Pat"},
			"depression": {"yes"},
		}})
		require.NoError(t, err)

		sub, err := f.uc.SubmitSession(ctx, created.SessionID, &requests.SubmitSession{RootDomain: "other.example.com"})
		require.NoError(t, err)
		assert.Equal(t, "DISQUALIFY", sub.Decision.Outcome)
		assert.Empty(t, sub.Message.Recommendation)
		assert.NotEmpty(t, sub.Message.Resources)
		require.NotNil(t, sub.Redirect)
		assert.Equal(t, "https://other.example.com/thankyou", sub.Redirect.URL)

		require.NoError(t, f.uc.Wait(ctx))
		msgs := f.publisher.published()
		require.Len(t, msgs, 1)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(msgs[0].Body, &body))
		assert.Equal(t, "DISQUALIFY", body["routing_outcome"])
		assert.NotEmpty(t, body["routing_reason"])
	})

	t.Run("Delivery failures do not fail the submission", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.err = errors.New("collector down")
		created, err := f.uc.CreateSession(ctx, "glp1", &requests.StartSession{Responses: eligibleGLP1})
		require.NoError(t, err)

		sub, err := f.uc.SubmitSession(ctx, created.SessionID, nil)
		require.NoError(t, err)
		assert.Equal(t, "PROCEED", sub.Decision.Outcome)
		require.NoError(t, f.uc.Wait(ctx))
	})

	t.Run("Unknown screener types fall back to the default screener", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateSession(ctx, "ketamine", nil)
		require.NoError(t, err)
		assert.Equal(t, "ketamine", created.ScreenerType)
		assert.NotEmpty(t, created.VisibleQuestions)
	})

	t.Run("Restore keeps valid conditional answers when the schema drops a question", func(t *testing.T) {
		f := newFixture(t)
		stored := &models.ScreenerSession{
			SessionID:    "6a1f4c2e-0b9d-4f57-8c3e-2d7a9b1e5f40",
			ScreenerType: "glp1",
			Responses: map[string][]string{
				"gender":           {"female"},
				"pregnancy":        {"yes"},
				"retired_question": {"x"},
			},
			CreatedAt: testNow,
			UpdatedAt: testNow,
		}
		require.NoError(t, f.uc.Store.Save(ctx, stored, time.Hour))

		for i := 0; i < 40; i++ {
			got, err := f.uc.GetSession(ctx, stored.SessionID)
			require.NoError(t, err)
			require.Equal(t, "DISQUALIFY", got.Decision.Outcome, "restore %d", i)
			require.Equal(t, []string{"yes"}, got.Responses["pregnancy"], "restore %d", i)
			_, stale := got.Responses["retired_question"]
			require.False(t, stale)
		}

		got, err := f.uc.AnswerQuestion(ctx, stored.SessionID, &requests.AnswerQuestion{QuestionID: "depression", Values: []string{"no"}})
		require.NoError(t, err)
		assert.Equal(t, "DISQUALIFY", got.Decision.Outcome)
		assert.Equal(t, []string{"yes"}, got.Responses["pregnancy"])
		assert.Equal(t, []string{"female"}, got.Responses["gender"])

		saved, err := f.uc.Store.Find(ctx, stored.SessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"yes"}, saved.Responses["pregnancy"])
		_, stale := saved.Responses["retired_question"]
		assert.False(t, stale)
	})

	t.Run("Restore drops options the schema no longer offers", func(t *testing.T) {
		f := newFixture(t)
		stored := &models.ScreenerSession{
			SessionID:    "0d3b7e91-5c2a-4e68-b1f4-93a8c6d2e715",
			ScreenerType: "glp1",
			Responses: map[string][]string{
				"gender":     {"female"},
				"pregnancy":  {"yes"},
				"depression": {"sometimes"},
			},
			CreatedAt: testNow,
			UpdatedAt: testNow,
		}
		require.NoError(t, f.uc.Store.Save(ctx, stored, time.Hour))

		got, err := f.uc.GetSession(ctx, stored.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "DISQUALIFY", got.Decision.Outcome)
		assert.Equal(t, []string{"yes"}, got.Responses["pregnancy"])
		_, kept := got.Responses["depression"]
		assert.False(t, kept)
	})

	t.Run("Initial answers accept name aliases", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "aliased.json"), []byte(`{"screener":"aliased","questions":[
			{"id": 4, "name": "gender", "text": "Sex", "type": "radio", "safe": ["male","female"]},
			{"id": 7, "name": "pregnancy", "text": "Pregnant?", "type": "radio", "showCondition": "4=female", "safe": ["no"], "disqualify": ["yes"]}
		]}`), 0o644))
		f := newFixtureFor(t, dir)

		created, err := f.uc.CreateSession(ctx, "aliased", &requests.StartSession{Responses: map[string][]string{
			"gender":    {"female"},
			"pregnancy": {"yes"},
		}})
		require.NoError(t, err)
		assert.Equal(t, "DISQUALIFY", created.Decision.Outcome)
		assert.Equal(t, []string{"female"}, created.Responses["4"])
		assert.Equal(t, []string{"yes"}, created.Responses["7"])

		got, err := f.uc.AnswerQuestion(ctx, created.SessionID, &requests.AnswerQuestion{QuestionID: "gender", Values: []string{"male"}})
		require.NoError(t, err)
		assert.Equal(t, "PROCEED", got.Decision.Outcome)
		assert.Equal(t, []string{"7"}, got.ClearedQuestions)
	})
}
