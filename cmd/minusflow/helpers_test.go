package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestHeuristicConfigFromViperDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := heuristicConfigFromViper()
	assert.Equal(t, 3000.0, cfg.MaxCpl)
	assert.Equal(t, 50, cfg.MinImpressions)
	assert.Equal(t, 0, cfg.MinClicks)
	assert.Contains(t, cfg.StopWords, "бесплатно")
}

func TestHeuristicConfigFromViperOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("analysis.max_cpl", 1500.0)
	viper.Set("analysis.min_impressions", 100)
	viper.Set("analysis.min_clicks", 1)
	viper.Set("analysis.stop_words", []string{"цена", "отзывы"})

	cfg := heuristicConfigFromViper()
	assert.Equal(t, 1500.0, cfg.MaxCpl)
	assert.Equal(t, 100, cfg.MinImpressions)
	assert.Equal(t, 1, cfg.MinClicks)
	assert.Equal(t, []string{"цена", "отзывы"}, cfg.StopWords)
}
