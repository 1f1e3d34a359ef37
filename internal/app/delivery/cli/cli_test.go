package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"screener-service/internal/pkg/screener"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const screenerDir = "../../../../configs/screeners"

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestCheckDirectory(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("Bundled screeners are valid", func(t *testing.T) {
		summary, err := CheckDirectory(screenerDir, screener.DefaultRuleTable(), now)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Invalid)
		require.Len(t, summary.Screeners, 3)

		for _, r := range summary.Screeners {
			assert.NotEmpty(t, r.FormType, r.File)
			assert.False(t, r.DefaultProfile, r.File)
		}
	})

	t.Run("Reports broken and misconfigured files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.json", `{"questions":[`)
		writeFile(t, dir, "custom.json", `{"questions":[
			{"id":"mood","text":"Mood","type":"radio"}
		]}`)
		writeFile(t, dir, SummaryFileName, `{}`)
		writeFile(t, dir, "notes.txt", "ignored")

		summary, err := CheckDirectory(dir, screener.DefaultRuleTable(), now)
		require.NoError(t, err)
		require.Len(t, summary.Screeners, 2)
		assert.Equal(t, 1, summary.Invalid)
		assert.Equal(t, 1, summary.Warnings)

		broken, custom := summary.Screeners[0], summary.Screeners[1]
		assert.Equal(t, StatusInvalid, broken.Status)
		assert.NotEmpty(t, broken.Error)

		assert.Equal(t, StatusWarning, custom.Status)
		assert.Equal(t, "custom", custom.ScreenerType)
		assert.True(t, custom.DefaultProfile)
		assert.Len(t, custom.ConfigurationErrors, 1)
		assert.Contains(t, custom.UnresolvedFields, "pregnancy")
	})

	t.Run("Missing directory", func(t *testing.T) {
		_, err := CheckDirectory(filepath.Join(t.TempDir(), "nope"), screener.DefaultRuleTable(), now)
		assert.Error(t, err)
	})
}

func TestValidateCommand(t *testing.T) {
	t.Run("Writes the summary file", func(t *testing.T) {
		dir := t.TempDir()
		raw, err := os.ReadFile(filepath.Join(screenerDir, "nad.json"))
		require.NoError(t, err)
		writeFile(t, dir, "nad.json", string(raw))

		var out bytes.Buffer
		cmd := NewRootCommand(quietLogger())
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"validate", "--summary", dir})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "nad.json")

		written, err := os.ReadFile(filepath.Join(dir, SummaryFileName))
		require.NoError(t, err)
		var summary Summary
		require.NoError(t, json.Unmarshal(written, &summary))
		assert.Equal(t, 1, summary.Valid)
		assert.Equal(t, "NAD_Screening", summary.Screeners[0].FormType)
	})

	t.Run("Fails on invalid screeners", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.json", `not json`)

		cmd := NewRootCommand(quietLogger())
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"validate", dir})
		assert.ErrorIs(t, cmd.Execute(), errInvalidScreeners)
	})
}

func TestRulesCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand(quietLogger())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"rules"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "glp1")
	assert.Contains(t, out.String(), "default (default)")
}
