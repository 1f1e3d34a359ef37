package screener

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseStore(t *testing.T) {
	s := mustParse(t, testGLP1Schema)

	t.Run("Panics on unknown ids", func(t *testing.T) {
		store := NewResponseStore(s)
		assert.Panics(t, func() { store.Values("nope") })
		assert.Panics(t, func() { _ = store.Set("nope", "x") })

		defer func() {
			rec := recover()
			err, ok := rec.(error)
			require.True(t, ok)
			assert.True(t, errors.Is(err, ErrUnknownQuestion))
		}()
		store.Has("nope")
	})

	t.Run("Rejects options outside the value sets", func(t *testing.T) {
		store := NewResponseStore(s)
		require.NoError(t, store.Set("gender", "female"))

		var cerr *ConfigurationError
		err := store.Set("gender", "other")
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "female", store.Value("gender"), "previous answer is kept")
	})

	t.Run("Keeps multi select order and drops blanks", func(t *testing.T) {
		store := NewResponseStore(s)
		require.NoError(t, store.Set("medical_conditions", "kidney_disease", "", "diabetes_type2", "kidney_disease"))
		assert.Equal(t, []string{"kidney_disease", "diabetes_type2"}, store.Values("medical_conditions"))
		assert.True(t, store.Includes("medical_conditions", "diabetes_type2"))
	})

	t.Run("Single valued questions take one value", func(t *testing.T) {
		store := NewResponseStore(s)
		assert.Error(t, store.Set("gender", "male", "female"))
	})

	t.Run("Empty set clears and reset drops everything", func(t *testing.T) {
		store := NewResponseStore(s)
		require.NoError(t, store.Set("email", "a@b.co"))
		require.NoError(t, store.Set("email"))
		assert.False(t, store.Has("email"))

		require.NoError(t, store.Set("gender", "male"))
		store.Reset()
		assert.Empty(t, store.Snapshot())
	})

	t.Run("Load rejects answers to unknown questions", func(t *testing.T) {
		store := NewResponseStore(s)
		err := store.Load(map[QuestionID][]string{"gender": {"male"}, "ghost": {"x"}})
		assert.Error(t, err)
		assert.Empty(t, store.Snapshot())
	})

	t.Run("LoadAccepted keeps what the screener still accepts", func(t *testing.T) {
		store := NewResponseStore(s)
		dropped := store.LoadAccepted(map[QuestionID][]string{
			"zeta":       {"x"},
			"pregnancy":  {"yes"},
			"gender":     {"female"},
			"depression": {"sometimes"},
			"alpha":      {"y"},
		})
		assert.Equal(t, []QuestionID{"depression", "alpha", "zeta"}, dropped)
		assert.Equal(t, map[QuestionID][]string{
			"gender":    {"female"},
			"pregnancy": {"yes"},
		}, store.Snapshot())
	})
}

func TestEvaluateVisibility(t *testing.T) {
	t.Run("Initial state shows only unconditional questions", func(t *testing.T) {
		s := mustParse(t, testGLP1Schema)
		vis := InitialVisibility(s)

		assert.True(t, vis.Visible("gender"))
		assert.False(t, vis.Visible("pregnancy"))
		assert.False(t, vis.Required("pregnancy"), "hidden questions are never required")
		assert.True(t, vis.Required("email"))
		assert.False(t, vis.Required("phone"))
	})

	t.Run("Hiding a follow up clears its answer", func(t *testing.T) {
		s := mustParse(t, testGLP1Schema)
		store := NewResponseStore(s)

		require.NoError(t, store.Set("gender", "female"))
		vis, cleared := EvaluateVisibility(s, store)
		assert.True(t, vis.Visible("pregnancy"))
		assert.True(t, vis.Required("pregnancy"))
		assert.Empty(t, cleared)

		require.NoError(t, store.Set("pregnancy", "yes"))
		require.NoError(t, store.Set("gender", "male"))
		vis, cleared = EvaluateVisibility(s, store)
		assert.False(t, vis.Visible("pregnancy"))
		assert.Equal(t, []QuestionID{"pregnancy"}, cleared)
		assert.False(t, store.Has("pregnancy"))

		require.NoError(t, store.Set("gender", "female"))
		vis, _ = EvaluateVisibility(s, store)
		assert.True(t, vis.Visible("pregnancy"))
		assert.False(t, store.Has("pregnancy"), "the old answer is not restored")
	})

	t.Run("Clears chains of dependents", func(t *testing.T) {
		s := mustParse(t, `{"questions":[
			{"id":"c","text":"C","type":"text","showCondition":"b=yes"},
			{"id":"a","text":"A","type":"radio","safe":["yes","no"]},
			{"id":"b","text":"B","type":"radio","showCondition":"a=yes","safe":["yes","no"]}
		]}`)
		store := NewResponseStore(s)
		require.NoError(t, store.Set("a", "yes"))
		require.NoError(t, store.Set("b", "yes"))
		require.NoError(t, store.Set("c", "details"))

		vis, cleared := EvaluateVisibility(s, store)
		assert.True(t, vis.Visible("c"), "forward references resolve")
		assert.Empty(t, cleared)

		require.NoError(t, store.Set("a", "no"))
		vis, cleared = EvaluateVisibility(s, store)
		assert.False(t, vis.Visible("b"))
		assert.False(t, vis.Visible("c"))
		assert.ElementsMatch(t, []QuestionID{"b", "c"}, cleared)
	})

	t.Run("Cycles stay hidden", func(t *testing.T) {
		s := mustParse(t, `{"questions":[
			{"id":"a","text":"A","type":"radio","showCondition":"b=yes","safe":["yes"]},
			{"id":"b","text":"B","type":"radio","showCondition":"a=yes","safe":["yes"]}
		]}`)
		vis, _ := EvaluateVisibility(s, NewResponseStore(s))
		assert.False(t, vis.Visible("a"))
		assert.False(t, vis.Visible("b"))
	})

	t.Run("Is idempotent", func(t *testing.T) {
		s := mustParse(t, testGLP1Schema)
		store := NewResponseStore(s)
		require.NoError(t, store.Set("gender", "female"))
		require.NoError(t, store.Set("pregnancy", "no"))
		require.NoError(t, store.Set("current_medications", "other_glp1s"))
		require.NoError(t, store.Set("other_glp1_details", "liraglutide"))
		require.NoError(t, store.Set("current_medications", "none"))

		first, cleared := EvaluateVisibility(s, store)
		assert.Equal(t, []QuestionID{"other_glp1_details"}, cleared)
		snapshot := store.Snapshot()

		second, clearedAgain := EvaluateVisibility(s, store)
		assert.True(t, first.Equal(second))
		assert.Empty(t, clearedAgain)
		assert.Equal(t, snapshot, store.Snapshot())
	})
}
