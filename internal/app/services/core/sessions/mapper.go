package sessions

import (
	"screener-service/internal/app/models"
	"screener-service/internal/pkg/dto/responses"
	"screener-service/internal/pkg/routing"
	"screener-service/internal/pkg/screener"
)

// toSnapshot keys answers by question id. Name aliases are resolved; an
// exact id wins over an alias naming the same question. Keys the screener
// does not know are kept as is so loading can report them.
func toSnapshot(sc *screener.Screener, stored map[string][]string) map[screener.QuestionID][]string {
	out := make(map[screener.QuestionID][]string, len(stored))
	for key, values := range stored {
		if sc.Has(screener.QuestionID(key)) {
			out[screener.QuestionID(key)] = values
		}
	}
	for key, values := range stored {
		if sc.Has(screener.QuestionID(key)) {
			continue
		}
		id, ok := sc.Resolve(key)
		if !ok {
			id = screener.QuestionID(key)
		}
		if _, taken := out[id]; !taken {
			out[id] = values
		}
	}
	return out
}

func fromSnapshot(snapshot map[screener.QuestionID][]string) map[string][]string {
	out := make(map[string][]string, len(snapshot))
	for id, values := range snapshot {
		out[string(id)] = values
	}
	return out
}

func questionIDs(ids []screener.QuestionID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func toDecisionResponse(d screener.Decision) responses.Decision {
	return responses.Decision{
		Outcome:        string(d.Outcome),
		Reason:         d.Reason,
		RuleID:         d.RuleID,
		SafetyCritical: d.SafetyCritical(),
	}
}

func toSessionResponse(session *models.ScreenerSession, sc *screener.Screener, eval screener.Evaluation) *responses.Session {
	var required []screener.QuestionID
	for _, q := range sc.Questions() {
		if eval.Visibility.Required(q.ID) {
			required = append(required, q.ID)
		}
	}

	return &responses.Session{
		SessionID:         session.SessionID,
		ScreenerType:      session.ScreenerType,
		Responses:         session.Responses,
		VisibleQuestions:  questionIDs(eval.Visibility.VisibleIDs(sc)),
		RequiredQuestions: questionIDs(required),
		ClearedQuestions:  questionIDs(eval.Cleared),
		Metrics: responses.Metrics{
			Age: eval.Metrics.Age,
			BMI: eval.Metrics.BMI,
		},
		Decision: toDecisionResponse(eval.Decision),
		Stop:     eval.Decision.Outcome == screener.OutcomeDisqualify,
	}
}

func toMessageResponse(m screener.Message) responses.Message {
	return responses.Message{
		Title:          m.Title,
		Body:           m.Body,
		Resources:      m.Resources,
		Recommendation: m.Recommendation,
	}
}

func toRedirectResponse(target *routing.RedirectTarget) (*responses.Redirect, *responses.Signal) {
	if target == nil {
		return nil, nil
	}
	redirect := &responses.Redirect{
		URL:      target.URL,
		Category: target.Category,
		Outcome:  string(target.Outcome),
		Metadata: target.Metadata,
	}
	signal := target.Signal()
	return redirect, &responses.Signal{
		Category:    signal.Category,
		Outcome:     signal.Outcome,
		RedirectURL: signal.RedirectURL,
	}
}
