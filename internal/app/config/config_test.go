package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInternalConfig(t *testing.T) {
	t.Run("Reads routing overrides", func(t *testing.T) {
		t.Setenv("ROUTING_CATEGORY_PATHS", "weightloss=glp1fee, broken, =x,hormones = trtfee")
		t.Setenv("APP_SUBMIT_REQUESTS_PER_SECOND", "2.5")

		cfg := NewInternalConfig()
		assert.Equal(t, map[string]string{"weightloss": "glp1fee", "hormones": "trtfee"}, cfg.Routing.CategoryPaths)
		assert.Equal(t, 2.5, cfg.App.SubmitRequestsPerSecond)
	})

	t.Run("Defaults", func(t *testing.T) {
		cfg := NewInternalConfig()
		assert.Equal(t, "/api/v1", cfg.App.EndpointPrefix)
		assert.Equal(t, "file", cfg.Screener.Source)
		assert.Equal(t, "direct", cfg.Webhook.Delivery)
		assert.Empty(t, cfg.Routing.CategoryPaths)
	})
}
