package strategy

import (
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

// Classifier scores one feature vector. PredictProba returns
// [p(short), p(long)].
type Classifier interface {
	PredictProba(features []float32) ([]float32, error)
	Close() error
}

// ModelStrategy votes with a binary classifier over FeatureBuilder features.
// LONG when p(long) reaches the threshold, otherwise SHORT when p(short) does,
// otherwise FLAT.
type ModelStrategy struct {
	features   *FeatureBuilder
	classifier Classifier
	threshold  float64

	seen    int
	lastBar types.Bar
}

var _ Strategy = (*ModelStrategy)(nil)

func NewModelStrategy(features *FeatureBuilder, classifier Classifier, threshold float64) (*ModelStrategy, error) {
	if features == nil || classifier == nil {
		return nil, errors.New(errors.ErrCodeStrategyConfigError, "model strategy needs a feature builder and a classifier")
	}

	if threshold <= 0 || threshold > 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidThreshold, "threshold must be in (0, 1], got %v", threshold)
	}

	return &ModelStrategy{
		features:   features,
		classifier: classifier,
		threshold:  threshold,
	}, nil
}

// Name implements Strategy.
func (m *ModelStrategy) Name() string {
	return "ml_model"
}

// Signal implements Strategy. Only the last bar is scored.
func (m *ModelStrategy) Signal(history []types.Bar) (types.Direction, error) {
	if len(history) == 0 {
		return types.DirectionFlat, nil
	}

	if m.seen > 0 && (len(history) < m.seen || history[m.seen-1] != m.lastBar) {
		m.features.Reset()
		m.seen = 0
	}

	for _, bar := range history[m.seen:] {
		m.features.Update(bar)
	}

	m.seen = len(history)
	m.lastBar = history[len(history)-1]

	vector := m.features.Latest()
	if vector == nil {
		return types.DirectionFlat, nil
	}

	probs, err := m.classifier.PredictProba(vector)
	if err != nil {
		return types.DirectionFlat, errors.Wrap(errors.ErrCodeModelInferenceFailed, "classifier failed", err)
	}

	if len(probs) != 2 {
		return types.DirectionFlat, errors.Newf(errors.ErrCodeModelInferenceFailed, "expected 2 class probabilities, got %d", len(probs))
	}

	switch {
	case float64(probs[1]) >= m.threshold:
		return types.DirectionLong, nil
	case float64(probs[0]) >= m.threshold:
		return types.DirectionShort, nil
	default:
		return types.DirectionFlat, nil
	}
}

// Close releases the classifier.
func (m *ModelStrategy) Close() error {
	return m.classifier.Close()
}
