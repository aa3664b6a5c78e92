package script

import (
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	myanmartools "github.com/google/myanmar-tools/clients/go"
	rabbit "github.com/Rabbit-Converter/Rabbit-Go"
)

// ZawgyiThreshold is the probability above which text is treated as Zawgyi.
// The comparison is strict: a probability of exactly 0.5 leaves text unchanged.
const ZawgyiThreshold = 0.5

// ZawgyiDetector scores how likely a string is Zawgyi-encoded rather than Unicode.
type ZawgyiDetector interface {
	GetZawgyiProbability(text string) float64
}

// Converter transliterates Zawgyi-encoded text to standard Unicode.
type Converter interface {
	ToUnicode(text string) string
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(string) string

// ToUnicode calls f(text).
func (f ConverterFunc) ToUnicode(text string) string { return f(text) }

// RabbitConverter converts with the Rabbit rule set.
var RabbitConverter Converter = ConverterFunc(rabbit.Zg2uni)

// Result describes one normalization.
type Result struct {
	Text              string  `json:"text"`
	ZawgyiProbability float64 `json:"zawgyi_probability"`
	Converted         bool    `json:"converted"`
}

// Normalizer guarantees its output is Unicode-encoded Myanmar text.
// It is safe for concurrent use.
type Normalizer struct {
	detector  ZawgyiDetector
	converter Converter
	logger    *logrus.Logger
}

// NewNormalizer creates a Normalizer backed by the myanmar-tools detector and
// the Rabbit converter.
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return NewNormalizerWith(myanmartools.NewZawgyiDetector(), RabbitConverter, logger)
}

// NewNormalizerWith creates a Normalizer from explicit collaborators.
func NewNormalizerWith(detector ZawgyiDetector, converter Converter, logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Normalizer{
		detector:  detector,
		converter: converter,
		logger:    logger,
	}
}

// Normalize returns text in standard Unicode encoding.
func (n *Normalizer) Normalize(text string) string {
	return n.NormalizeDetailed(text).Text
}

// NormalizeDetailed is Normalize with the detector score attached.
func (n *Normalizer) NormalizeDetailed(text string) Result {
	if text == "" {
		return Result{}
	}

	p := n.detector.GetZawgyiProbability(text)
	if math.IsInf(p, 0) || math.IsNaN(p) {
		// the detector reports -Inf for text with no Myanmar code points
		p = 0
	}
	if p <= ZawgyiThreshold {
		normalizationsTotal.WithLabelValues("unchanged").Inc()
		return Result{Text: text, ZawgyiProbability: p}
	}

	converted := norm.NFC.String(n.converter.ToUnicode(text))
	normalizationsTotal.WithLabelValues("converted").Inc()

	n.logger.WithFields(logrus.Fields{
		"zawgyi_probability": p,
		"input_length":       len(text),
		"output_length":      len(converted),
	}).Debug("Converted Zawgyi text to Unicode")

	return Result{Text: converted, ZawgyiProbability: p, Converted: true}
}
