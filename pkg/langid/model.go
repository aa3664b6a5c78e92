package langid

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// File format identifiers written by the training export.
const (
	VectorizerFormat = "myanlang.tfidf/v1"
	ClassifierFormat = "myanlang.linear/v1"
)

// SparseVector maps feature index to weight.
type SparseVector map[int]float64

// Vectorizer turns text into a feature vector.
type Vectorizer interface {
	Transform(text string) SparseVector
}

// Predictor assigns a label to a feature vector.
type Predictor interface {
	Predict(x SparseVector) (string, error)
}

// MarginScorer is implemented by predictors that expose signed distances to
// their decision boundaries. One score is returned per boundary.
type MarginScorer interface {
	DecisionFunction(x SparseVector) ([]float64, error)
}

// Model pairs a predictor with the vectorizer it was trained against.
// A Model is immutable once built and safe for concurrent use.
type Model struct {
	Vectorizer Vectorizer
	Predictor  Predictor
}

// Analyzer selects how TFIDFVectorizer splits text into terms.
type Analyzer string

const (
	AnalyzerWord   Analyzer = "word"
	AnalyzerChar   Analyzer = "char"
	AnalyzerCharWB Analyzer = "char_wb"
)

var (
	wordPattern       = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)
	whitespacePattern = regexp.MustCompile(`\s\s+`)
)

// TFIDFVectorizer is a fitted term-frequency / inverse-document-frequency
// transform with a fixed vocabulary.
type TFIDFVectorizer struct {
	Format      string         `json:"format"`
	Analyzer    Analyzer       `json:"analyzer"`
	NgramRange  [2]int         `json:"ngram_range"`
	Lowercase   bool           `json:"lowercase"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

// Validate checks the vectorizer is internally consistent.
func (v *TFIDFVectorizer) Validate() error {
	if v.Format != VectorizerFormat {
		return fmt.Errorf("unsupported vectorizer format %q (want %q)", v.Format, VectorizerFormat)
	}
	switch v.Analyzer {
	case AnalyzerWord, AnalyzerChar, AnalyzerCharWB:
	default:
		return fmt.Errorf("unsupported analyzer %q", v.Analyzer)
	}
	if v.NgramRange[0] < 1 || v.NgramRange[1] < v.NgramRange[0] {
		return fmt.Errorf("invalid ngram_range %v", v.NgramRange)
	}
	switch v.Norm {
	case "", "l1", "l2":
	default:
		return fmt.Errorf("unsupported norm %q", v.Norm)
	}
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("idf has %d entries, vocabulary has %d", len(v.IDF), len(v.Vocabulary))
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("vocabulary index %d for %q out of range", idx, term)
		}
	}
	return nil
}

// Features returns the width of vectors produced by Transform.
func (v *TFIDFVectorizer) Features() int { return len(v.IDF) }

// Transform implements Vectorizer.
func (v *TFIDFVectorizer) Transform(text string) SparseVector {
	if v.Lowercase {
		text = strings.ToLower(text)
	}

	counts := make(map[int]float64)
	v.eachTerm(text, func(term string) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	})

	vec := make(SparseVector, len(counts))
	for idx, tf := range counts {
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec[idx] = tf * v.IDF[idx]
	}
	v.normalize(vec)
	return vec
}

func (v *TFIDFVectorizer) eachTerm(text string, emit func(string)) {
	lo, hi := v.NgramRange[0], v.NgramRange[1]

	switch v.Analyzer {
	case AnalyzerWord:
		tokens := wordPattern.FindAllString(text, -1)
		for n := lo; n <= hi; n++ {
			for i := 0; i+n <= len(tokens); i++ {
				emit(strings.Join(tokens[i:i+n], " "))
			}
		}
	case AnalyzerChar:
		charNgrams(whitespacePattern.ReplaceAllString(text, " "), lo, hi, emit)
	case AnalyzerCharWB:
		for _, word := range strings.Fields(text) {
			padded := " " + word + " "
			size := utf8.RuneCountInString(padded)
			for n := lo; n <= hi; n++ {
				// a padded word no longer than n is emitted whole, once
				if size <= n {
					emit(padded)
					break
				}
				charNgrams(padded, n, n, emit)
			}
		}
	}
}

func charNgrams(text string, lo, hi int, emit func(string)) {
	runes := []rune(text)
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(runes); i++ {
			emit(string(runes[i : i+n]))
		}
	}
}

func (v *TFIDFVectorizer) normalize(vec SparseVector) {
	var total float64
	switch v.Norm {
	case "l2":
		for _, w := range vec {
			total += w * w
		}
		total = math.Sqrt(total)
	case "l1":
		for _, w := range vec {
			total += math.Abs(w)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for idx := range vec {
		vec[idx] /= total
	}
}

// LinearClassifier is a fitted one-vs-rest linear model such as a linear SVM.
// Binary models carry one coefficient row: positive scores select Classes[1].
type LinearClassifier struct {
	Format    string      `json:"format"`
	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// Validate checks the classifier is consistent with a vectorizer of the
// given width.
func (c *LinearClassifier) Validate(features int) error {
	if c.Format != ClassifierFormat {
		return fmt.Errorf("unsupported classifier format %q (want %q)", c.Format, ClassifierFormat)
	}
	if len(c.Classes) < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", len(c.Classes))
	}
	rows := len(c.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(c.Coef) != rows {
		return fmt.Errorf("coef has %d rows, want %d for %d classes", len(c.Coef), rows, len(c.Classes))
	}
	if len(c.Intercept) != rows {
		return fmt.Errorf("intercept has %d entries, want %d", len(c.Intercept), rows)
	}
	for i, row := range c.Coef {
		if len(row) != features {
			return fmt.Errorf("coef row %d has %d features, vectorizer produces %d", i, len(row), features)
		}
	}
	return nil
}

// DecisionFunction implements MarginScorer.
func (c *LinearClassifier) DecisionFunction(x SparseVector) ([]float64, error) {
	scores := make([]float64, len(c.Coef))
	for i, row := range c.Coef {
		s := c.Intercept[i]
		for idx, w := range x {
			if idx < 0 || idx >= len(row) {
				return nil, fmt.Errorf("feature index %d out of range", idx)
			}
			s += row[idx] * w
		}
		scores[i] = s
	}
	return scores, nil
}

// Predict implements Predictor.
func (c *LinearClassifier) Predict(x SparseVector) (string, error) {
	scores, err := c.DecisionFunction(x)
	if err != nil {
		return "", err
	}
	return c.Classes[winner(scores)], nil
}

// winner returns the index into Classes selected by scores.
func winner(scores []float64) int {
	if len(scores) == 1 {
		if scores[0] > 0 {
			return 1
		}
		return 0
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

// margin reduces decision scores to a single confidence value: the absolute
// distance of the winning boundary.
func margin(scores []float64) (float64, bool) {
	switch len(scores) {
	case 0:
		return 0, false
	case 1:
		return math.Abs(scores[0]), true
	}
	return math.Abs(scores[winner(scores)]), true
}
