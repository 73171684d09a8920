// Package analytics implements the per-(pair, venue) market-microstructure
// estimators: VPIN order-flow toxicity, multi-method volatility, Kyle's-lambda
// price impact, inventory-aware reservation pricing, Avellaneda-Stoikov
// optimal spreads and AR(1) order-flow regime classification.
//
// Every estimator is an explicit instance with bounded state (fixed-capacity
// ring buffers), updated by exactly one writer in event-arrival order.
// Estimators never perform I/O and never block.
package analytics

import "errors"

// Status reports whether an estimator's result is usable.
type Status string

const (
	// StatusOK means the estimate is backed by enough samples.
	StatusOK Status = "ok"
	// StatusInsufficientData means the estimator has not yet seen enough
	// samples; callers must not treat the zero values as an estimate.
	StatusInsufficientData Status = "insufficient_data"
	// StatusNonStationary means a model fit fell outside its stationary
	// domain (AR(1) rho outside (0,1)); the result must not be extrapolated.
	StatusNonStationary Status = "non_stationary"
)

var (
	// ErrInvalidParameter is returned by constructors for non-positive
	// bucket sizes, windows, gamma or k. Construction-time only; estimators
	// never fall back to defaults at runtime.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrRiskLimitBreach is returned when an inventory update would push the
	// absolute position beyond the configured maximum. The update is
	// rejected, never clamped.
	ErrRiskLimitBreach = errors.New("risk limit breach")
)
