package analytics

import (
	"fmt"
	"math"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// ToxicityLevel grades a VPIN score into fixed, non-overlapping bands.
type ToxicityLevel string

const (
	ToxicitySafe     ToxicityLevel = "safe"
	ToxicityNormal   ToxicityLevel = "normal"
	ToxicityElevated ToxicityLevel = "elevated"
	ToxicityHigh     ToxicityLevel = "high"
)

// VPIN score thresholds for the toxicity bands.
const (
	vpinSafeMax     = 0.3
	vpinNormalMax   = 0.5
	vpinElevatedMax = 0.7
)

// VolumeBucket accumulates classified trade volume until it reaches its fill
// threshold, after which it is frozen and its imbalance recorded.
type VolumeBucket struct {
	BuyVolume     float64 `json:"buy_volume"`
	SellVolume    float64 `json:"sell_volume"`
	FillThreshold float64 `json:"fill_threshold"`
	Completed     bool    `json:"completed"`
}

// Total returns the bucket's accumulated volume.
func (b VolumeBucket) Total() float64 { return b.BuyVolume + b.SellVolume }

// Imbalance returns |buy-sell|/(buy+sell), or 0 for an empty bucket.
func (b VolumeBucket) Imbalance() float64 {
	total := b.Total()
	if total == 0 {
		return 0
	}
	return math.Abs(b.BuyVolume-b.SellVolume) / total
}

// VPINResult is the volume-synchronized probability of informed trading for
// one (pair, venue). Score is the mean bucket imbalance over the rolling
// window; ToxicityLevel is a pure function of Score.
type VPINResult struct {
	Status        Status        `json:"status"`
	Score         float64       `json:"score"`
	ToxicityLevel ToxicityLevel `json:"toxicity_level"`
	SampleCount   int           `json:"sample_count"`
	Confidence    float64       `json:"confidence"`
}

// VPINEngine buckets classified order flow by volume and scores the rolling
// imbalance. A result is emitted only when a bucket completes; until
// NumBuckets buckets have completed the engine reports insufficient data.
//
// Reference: Easley, Lopez de Prado, O'Hara (2012).
type VPINEngine struct {
	bucketSize float64
	numBuckets int

	current       VolumeBucket
	lastCompleted VolumeBucket
	imbalances    *ring[float64]
	lastResult    VPINResult
}

// NewVPINEngine creates a VPIN engine. Non-positive bucketSize or numBuckets
// is a construction-time error.
func NewVPINEngine(bucketSize float64, numBuckets int) (*VPINEngine, error) {
	if bucketSize <= 0 {
		return nil, fmt.Errorf("%w: bucket_size must be positive, got %f", ErrInvalidParameter, bucketSize)
	}
	if numBuckets <= 0 {
		return nil, fmt.Errorf("%w: num_buckets must be positive, got %d", ErrInvalidParameter, numBuckets)
	}
	return &VPINEngine{
		bucketSize: bucketSize,
		numBuckets: numBuckets,
		current:    VolumeBucket{FillThreshold: bucketSize},
		imbalances: newRing[float64](numBuckets),
		lastResult: VPINResult{Status: StatusInsufficientData},
	}, nil
}

// AddTrade accumulates one trade's volume into the current bucket, splitting
// volume that straddles a bucket boundary proportionally between the
// completing bucket and its successor. It returns the refreshed result and
// true whenever at least one bucket completed on this trade.
func (e *VPINEngine) AddTrade(volume float64, side models.TradeSide) (VPINResult, bool) {
	if volume <= 0 {
		return e.lastResult, false
	}

	completed := false
	remaining := volume
	for remaining > 0 {
		room := e.bucketSize - e.current.Total()
		fill := math.Min(remaining, room)
		if side == models.TradeSideBuy {
			e.current.BuyVolume += fill
		} else {
			e.current.SellVolume += fill
		}
		remaining -= fill

		if e.current.Total() >= e.bucketSize {
			e.current.Completed = true
			e.imbalances.Push(e.current.Imbalance())
			e.lastCompleted = e.current
			e.current = VolumeBucket{FillThreshold: e.bucketSize}
			completed = true
		}
	}

	if completed {
		e.lastResult = e.compute()
	}
	return e.lastResult, completed
}

// Result returns the most recently emitted VPIN result without mutating state.
func (e *VPINEngine) Result() VPINResult { return e.lastResult }

// CurrentBucket exposes the in-progress bucket, primarily for inspection.
func (e *VPINEngine) CurrentBucket() VolumeBucket { return e.current }

// LastCompletedBucket returns the most recently frozen bucket.
func (e *VPINEngine) LastCompletedBucket() VolumeBucket { return e.lastCompleted }

func (e *VPINEngine) compute() VPINResult {
	if !e.imbalances.Full() {
		return VPINResult{
			Status:      StatusInsufficientData,
			SampleCount: e.imbalances.Len(),
		}
	}

	sum := 0.0
	for i := 0; i < e.imbalances.Len(); i++ {
		sum += e.imbalances.At(i)
	}
	score := sum / float64(e.imbalances.Len())

	return VPINResult{
		Status:        StatusOK,
		Score:         score,
		ToxicityLevel: ClassifyToxicity(score),
		SampleCount:   e.imbalances.Len(),
		Confidence:    math.Min(math.Abs(score-0.4)*2, 1.0),
	}
}

// ClassifyToxicity maps a VPIN score onto its toxicity band. The bands are
// total and non-overlapping over [0, 1].
func ClassifyToxicity(score float64) ToxicityLevel {
	switch {
	case score < vpinSafeMax:
		return ToxicitySafe
	case score < vpinNormalMax:
		return ToxicityNormal
	case score < vpinElevatedMax:
		return ToxicityElevated
	default:
		return ToxicityHigh
	}
}
