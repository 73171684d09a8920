package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rippin918/hummingbot-daily-auto/internal/analytics"
	"github.com/Rippin918/hummingbot-daily-auto/internal/config"
)

func TestAnalyzerConfigMapping(t *testing.T) {
	viper.Reset()
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Analytics.VPIN.BucketSize = 250
	cfg.Analytics.VPIN.NumBuckets = 40
	cfg.Analytics.Volatility.EstimatorChoice = "parkinson"
	cfg.Analytics.Inventory.Gamma = 0.2
	cfg.Analytics.Spread.K = 2.5

	ac := analyzerConfig(cfg)
	assert.Equal(t, 250.0, ac.VPINBucketSize)
	assert.Equal(t, 40, ac.VPINNumBuckets)
	assert.Equal(t, analytics.MethodParkinson, ac.Volatility.Method)
	assert.Equal(t, 0.2, ac.Inventory.RiskAversion)
	assert.Equal(t, 2.5, ac.Spread.K)
	assert.Equal(t, cfg.Analytics.KyleWindow, ac.KyleWindow)
	assert.Equal(t, cfg.Analytics.FlowWindow, ac.FlowWindow)
}

func TestAnalyzerConfigDefaultsBuildValidAnalyzer(t *testing.T) {
	viper.Reset()
	cfg, err := config.Load()
	require.NoError(t, err)

	ac := analyzerConfig(cfg)
	assert.Positive(t, ac.VPINBucketSize)
	assert.Positive(t, ac.VPINNumBuckets)
	assert.Positive(t, ac.Spread.Gamma)
	assert.Positive(t, ac.Spread.K)
}
