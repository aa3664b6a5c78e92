package langid

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/myanlang/pkg/script"
)

// Decision sources.
const (
	SourceClassifier = "classifier"
	SourceScript     = "script"
)

// Decision is the final language call for a text.
type Decision struct {
	Language   Language `json:"language"`
	Confidence *float64 `json:"confidence"`
	Source     string   `json:"source"`
}

// Policy decides the language of a text. The classifier is consulted first;
// if it fails, or returns a label outside the supported set, the decision
// falls back to whether the text contains Myanmar-block code points.
type Policy struct {
	classifier TextClassifier
	logger     *logrus.Logger
}

// NewPolicy creates a Policy. A nil classifier always uses the script fallback.
func NewPolicy(classifier TextClassifier, logger *logrus.Logger) *Policy {
	if logger == nil {
		logger = logrus.New()
	}
	return &Policy{classifier: classifier, logger: logger}
}

// Detect returns the language of text. It never fails.
func (p *Policy) Detect(ctx context.Context, text string) Language {
	return p.DetectDecision(ctx, text).Language
}

// DetectDecision is Detect with the confidence and deciding source attached.
func (p *Policy) DetectDecision(ctx context.Context, text string) Decision {
	if p.classifier != nil {
		res, err := p.classifier.Classify(ctx, text)
		if err == nil {
			lang, lerr := LanguageFromLabel(res.Label)
			if lerr == nil {
				detectionsTotal.WithLabelValues(SourceClassifier, string(lang)).Inc()
				return Decision{Language: lang, Confidence: res.Confidence, Source: SourceClassifier}
			}
			err = lerr
		}
		p.logger.WithError(err).Debug("Classifier unusable, falling back to script detection")
	}

	lang := ScriptLanguage(text)
	detectionsTotal.WithLabelValues(SourceScript, string(lang)).Inc()
	return Decision{Language: lang, Source: SourceScript}
}

// ScriptLanguage is the fallback heuristic: Myanmar if any rune is in the
// Myanmar block, English otherwise.
func ScriptLanguage(text string) Language {
	if script.ContainsMyanmar(text) {
		return Myanmar
	}
	return English
}
