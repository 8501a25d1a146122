package dice

import "go.uber.org/zap"

// Percent returns a uniform roll in [1, 100] for percentage checks.
//
// Precondition: src must be non-nil.
// Postcondition: result is in [1, 100].
func Percent(src Source) int {
	return src.Intn(100) + 1
}

// Between returns a uniform roll in [lo, hi] inclusive.
//
// Precondition: src must be non-nil; lo <= hi.
// Postcondition: result is in [lo, hi].
func Between(src Source, lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Variance returns a uniform float in [lo, hi), used for damage spread.
//
// Precondition: src must be non-nil; lo < hi.
// Postcondition: result is in [lo, hi).
func Variance(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// LoggedSource wraps a Source and logs every draw at debug level, giving
// combat resolution an audit trail without touching the call sites.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource that draws from src and logs each
// value to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result at debug level.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("dice roll",
		zap.Int("bound", n),
		zap.Int("value", v),
	)
	return v
}

// Float64 draws from the wrapped source and logs the result at debug level.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("dice float",
		zap.Float64("value", v),
	)
	return v
}
