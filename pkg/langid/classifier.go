package langid

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Result is the outcome of one classification. Confidence is nil when the
// model cannot score its decision margin.
type Result struct {
	Label      string   `json:"language"`
	Confidence *float64 `json:"confidence"`
}

// TextClassifier predicts the language label of a text.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// Classifier runs text through a vectorizer and linear model obtained from a
// ModelSource. Classify fails when the model is unavailable; use Policy for a
// decision that never fails.
type Classifier struct {
	source ModelSource
	logger *logrus.Logger
}

// NewClassifier creates a Classifier reading its model from source.
func NewClassifier(source ModelSource, logger *logrus.Logger) *Classifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Classifier{source: source, logger: logger}
}

// Classify predicts the language label of text.
//
// When the decision margin is below LowConfidenceThreshold the label is
// replaced by LowConfidenceLabel; the reported confidence is still the
// computed margin.
func (c *Classifier) Classify(ctx context.Context, text string) (Result, error) {
	if text == "" {
		classificationsTotal.WithLabelValues("invalid").Inc()
		return Result{}, ErrEmptyText
	}

	m, err := c.source.Model(ctx)
	if err != nil {
		classificationsTotal.WithLabelValues("unavailable").Inc()
		return Result{}, err
	}

	x := m.Vectorizer.Transform(text)
	label, err := m.Predictor.Predict(x)
	if err != nil {
		classificationsTotal.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("predict: %w", err)
	}

	res := Result{Label: label, Confidence: confidenceOf(m.Predictor, x)}
	if res.Confidence != nil && *res.Confidence < LowConfidenceThreshold {
		c.logger.WithFields(logrus.Fields{
			"predicted":  label,
			"confidence": *res.Confidence,
		}).Debug("Low classification confidence, defaulting to English")
		res.Label = LowConfidenceLabel
		classificationsTotal.WithLabelValues("low_confidence").Inc()
	} else {
		classificationsTotal.WithLabelValues("success").Inc()
	}

	return res, nil
}

func confidenceOf(p Predictor, x SparseVector) *float64 {
	scorer, ok := p.(MarginScorer)
	if !ok {
		return nil
	}
	scores, err := scorer.DecisionFunction(x)
	if err != nil {
		return nil
	}
	m, ok := margin(scores)
	if !ok {
		return nil
	}
	return &m
}
