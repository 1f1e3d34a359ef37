package screener

// Visibility is the evaluated display state of every question.
type Visibility struct {
	visible  map[QuestionID]bool
	required map[QuestionID]bool
}

func (v Visibility) Visible(id QuestionID) bool {
	return v.visible[id]
}

// Required reports the effective requirement: only visible questions can be required.
func (v Visibility) Required(id QuestionID) bool {
	return v.required[id]
}

// VisibleIDs lists the visible questions in schema order.
func (v Visibility) VisibleIDs(s *Screener) []QuestionID {
	var out []QuestionID
	for _, q := range s.questions {
		if v.visible[q.ID] {
			out = append(out, q.ID)
		}
	}
	return out
}

func (v Visibility) Equal(other Visibility) bool {
	if len(v.visible) != len(other.visible) || len(v.required) != len(other.required) {
		return false
	}
	for id, vis := range v.visible {
		if other.visible[id] != vis || other.required[id] != v.required[id] {
			return false
		}
	}
	return true
}

// InitialVisibility is the state before any answer: only unconditional
// questions are shown.
func InitialVisibility(s *Screener) Visibility {
	return EvaluateVisibilityReadOnly(s, NewResponseStore(s))
}

// EvaluateVisibilityReadOnly computes visibility without touching the store.
func EvaluateVisibilityReadOnly(s *Screener, store *ResponseStore) Visibility {
	visible := make(map[QuestionID]bool, len(s.questions))
	for _, q := range s.questions {
		visible[q.ID] = q.ShowCondition.Always()
	}

	// A question is shown when its trigger is shown and holds the trigger
	// value. Starting from "nothing conditional is shown" and repeating
	// until stable handles chains and forward references; cycles stay hidden.
	for pass := 0; pass <= len(s.questions); pass++ {
		changed := false
		for _, q := range s.questions {
			shown := q.ShowCondition.Always() ||
				(visible[q.ShowCondition.TriggerID] && contains(store.lookup(q.ShowCondition.TriggerID), q.ShowCondition.TriggerValue))
			if visible[q.ID] != shown {
				visible[q.ID] = shown
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	required := make(map[QuestionID]bool, len(s.questions))
	for _, q := range s.questions {
		required[q.ID] = visible[q.ID] && q.Required
	}
	return Visibility{visible: visible, required: required}
}

// EvaluateVisibility derives visibility from the stored answers and clears
// the answers of hidden questions, returning the cleared ids in schema order.
// A hidden trigger hides its dependents whatever it holds, so clearing never
// changes the computed visibility and a second call is a no-op.
func EvaluateVisibility(s *Screener, store *ResponseStore) (Visibility, []QuestionID) {
	vis := EvaluateVisibilityReadOnly(s, store)

	var cleared []QuestionID
	for _, q := range s.questions {
		if !vis.visible[q.ID] && len(store.lookup(q.ID)) > 0 {
			delete(store.values, q.ID)
			cleared = append(cleared, q.ID)
		}
	}
	return vis, cleared
}
