package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

func TestNewVPINEngine_InvalidParameters(t *testing.T) {
	_, err := NewVPINEngine(0, 50)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewVPINEngine(-10, 50)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewVPINEngine(100, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestVPINEngine_BucketCompletion(t *testing.T) {
	engine, err := NewVPINEngine(50, 50)
	require.NoError(t, err)

	_, done := engine.AddTrade(20, models.TradeSideBuy)
	assert.False(t, done)
	_, done = engine.AddTrade(20, models.TradeSideBuy)
	assert.False(t, done)
	_, done = engine.AddTrade(10, models.TradeSideSell)
	assert.True(t, done)

	bucket := engine.LastCompletedBucket()
	assert.True(t, bucket.Completed)
	assert.Equal(t, 40.0, bucket.BuyVolume)
	assert.Equal(t, 10.0, bucket.SellVolume)
	assert.InDelta(t, 0.6, bucket.Imbalance(), 1e-12)

	// Next bucket starts empty.
	assert.Equal(t, 0.0, engine.CurrentBucket().Total())
}

func TestVPINEngine_BoundaryVolumeSplits(t *testing.T) {
	engine, err := NewVPINEngine(100, 10)
	require.NoError(t, err)

	// 70 into the bucket, then 60 more: 30 completes it, 30 spills over.
	_, done := engine.AddTrade(70, models.TradeSideBuy)
	require.False(t, done)
	_, done = engine.AddTrade(60, models.TradeSideSell)
	require.True(t, done)

	completed := engine.LastCompletedBucket()
	assert.Equal(t, 70.0, completed.BuyVolume)
	assert.Equal(t, 30.0, completed.SellVolume)

	current := engine.CurrentBucket()
	assert.Equal(t, 0.0, current.BuyVolume)
	assert.Equal(t, 30.0, current.SellVolume)
}

func TestVPINEngine_SingleTradeCompletesMultipleBuckets(t *testing.T) {
	engine, err := NewVPINEngine(10, 3)
	require.NoError(t, err)

	res, done := engine.AddTrade(35, models.TradeSideBuy)
	require.True(t, done)
	assert.Equal(t, 3, res.SampleCount)
	assert.Equal(t, 5.0, engine.CurrentBucket().BuyVolume)
}

func TestVPINEngine_InsufficientUntilWindowFull(t *testing.T) {
	engine, err := NewVPINEngine(10, 5)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		res, done := engine.AddTrade(10, models.TradeSideBuy)
		require.True(t, done)
		assert.Equal(t, StatusInsufficientData, res.Status)
	}

	res, done := engine.AddTrade(10, models.TradeSideBuy)
	require.True(t, done)
	assert.Equal(t, StatusOK, res.Status)
	// All one-sided buckets: maximal imbalance.
	assert.InDelta(t, 1.0, res.Score, 1e-12)
	assert.Equal(t, ToxicityHigh, res.ToxicityLevel)
}

func TestVPINEngine_BalancedFlowScoresLow(t *testing.T) {
	engine, err := NewVPINEngine(10, 5)
	require.NoError(t, err)

	var res VPINResult
	for i := 0; i < 10; i++ {
		res, _ = engine.AddTrade(5, models.TradeSideBuy)
		res, _ = engine.AddTrade(5, models.TradeSideSell)
	}
	assert.Equal(t, StatusOK, res.Status)
	assert.InDelta(t, 0.0, res.Score, 1e-12)
	assert.Equal(t, ToxicitySafe, res.ToxicityLevel)
}

func TestVPINEngine_IgnoresNonPositiveVolume(t *testing.T) {
	engine, err := NewVPINEngine(10, 5)
	require.NoError(t, err)

	_, done := engine.AddTrade(0, models.TradeSideBuy)
	assert.False(t, done)
	_, done = engine.AddTrade(-5, models.TradeSideSell)
	assert.False(t, done)
	assert.Equal(t, 0.0, engine.CurrentBucket().Total())
}

func TestClassifyToxicity_Bands(t *testing.T) {
	tests := []struct {
		score float64
		want  ToxicityLevel
	}{
		{0.0, ToxicitySafe},
		{0.29, ToxicitySafe},
		{0.3, ToxicityNormal},
		{0.49, ToxicityNormal},
		{0.5, ToxicityElevated},
		{0.69, ToxicityElevated},
		{0.7, ToxicityHigh},
		{1.0, ToxicityHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyToxicity(tt.score), "score %f", tt.score)
	}
}
