package langid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPredictor returns the same label and margin for every input.
type fixedPredictor struct {
	label  string
	scores []float64
	err    error
}

func (p fixedPredictor) Predict(SparseVector) (string, error) { return p.label, nil }

func (p fixedPredictor) DecisionFunction(SparseVector) ([]float64, error) {
	return p.scores, p.err
}

// labelOnly cannot score margins.
type labelOnly struct{ label string }

func (p labelOnly) Predict(SparseVector) (string, error) { return p.label, nil }

type nopVectorizer struct{}

func (nopVectorizer) Transform(string) SparseVector { return SparseVector{} }

// countingSource records how often the model was requested.
type countingSource struct {
	calls int
	src   ModelSource
}

func (s *countingSource) Model(ctx context.Context) (*Model, error) {
	s.calls++
	return s.src.Model(ctx)
}

func staticModel(p Predictor) StaticSource {
	return StaticSource{M: &Model{Vectorizer: nopVectorizer{}, Predictor: p}}
}

func TestClassifier_Classify(t *testing.T) {
	ctx := context.Background()

	t.Run("low confidence overrides label to English", func(t *testing.T) {
		c := NewClassifier(staticModel(fixedPredictor{label: "Burmese", scores: []float64{-0.1}}), quietLogger())

		res, err := c.Classify(ctx, "မင်္ဂလာပါ")

		require.NoError(t, err)
		assert.Equal(t, "English", res.Label)
		require.NotNil(t, res.Confidence)
		assert.InDelta(t, 0.1, *res.Confidence, 1e-12)
	})

	t.Run("confidence at threshold keeps label", func(t *testing.T) {
		c := NewClassifier(staticModel(fixedPredictor{label: "Burmese", scores: []float64{0.4}}), quietLogger())

		res, err := c.Classify(ctx, "text")

		require.NoError(t, err)
		assert.Equal(t, "Burmese", res.Label)
		assert.Equal(t, 0.4, *res.Confidence)
	})

	t.Run("margin unsupported gives nil confidence", func(t *testing.T) {
		c := NewClassifier(staticModel(labelOnly{label: "Burmese"}), quietLogger())

		res, err := c.Classify(ctx, "text")

		require.NoError(t, err)
		assert.Equal(t, "Burmese", res.Label)
		assert.Nil(t, res.Confidence)
	})

	t.Run("margin error gives nil confidence", func(t *testing.T) {
		c := NewClassifier(staticModel(fixedPredictor{label: "my", err: errors.New("no margin")}), quietLogger())

		res, err := c.Classify(ctx, "text")

		require.NoError(t, err)
		assert.Equal(t, "my", res.Label)
		assert.Nil(t, res.Confidence)
	})

	t.Run("empty text rejected before model", func(t *testing.T) {
		src := &countingSource{src: staticModel(labelOnly{label: "en"})}
		c := NewClassifier(src, quietLogger())

		_, err := c.Classify(ctx, "")

		assert.ErrorIs(t, err, ErrEmptyText)
		assert.Equal(t, 0, src.calls)
	})

	t.Run("unavailable model fails", func(t *testing.T) {
		c := NewClassifier(StaticSource{}, quietLogger())

		_, err := c.Classify(ctx, "hello")

		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("real linear model end to end", func(t *testing.T) {
		vec, clf := tinyModel()
		c := NewClassifier(StaticSource{M: &Model{Vectorizer: vec, Predictor: clf}}, quietLogger())

		res, err := c.Classify(ctx, "ကက")

		require.NoError(t, err)
		assert.Equal(t, "Myanmar", res.Label)
		assert.Equal(t, 4.0, *res.Confidence)
	})
}
