package langid

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultModelPath is the classifier file used when none is configured.
	DefaultModelPath = "models/svm_language_classifier.json"
	// DefaultVectorizerPath is the vectorizer file used when none is configured.
	DefaultVectorizerPath = "models/tfidf_vectorizer_lang.json"

	DefaultRetryInitial = time.Second
	DefaultRetryMax     = time.Minute
)

// ModelSource hands out the loaded classification model.
type ModelSource interface {
	Model(ctx context.Context) (*Model, error)
}

// StaticSource always returns the same model, or ErrModelUnavailable when nil.
type StaticSource struct {
	M *Model
}

// Model implements ModelSource.
func (s StaticSource) Model(context.Context) (*Model, error) {
	if s.M == nil {
		return nil, ErrModelUnavailable
	}
	return s.M, nil
}

// LoadFiles reads a linear classifier and its TF-IDF vectorizer from JSON
// files. Every failure wraps ErrModelUnavailable.
func LoadFiles(modelPath, vectorizerPath string) (*Model, error) {
	var vec TFIDFVectorizer
	if err := readJSON(vectorizerPath, &vec); err != nil {
		return nil, fmt.Errorf("%w: load vectorizer: %v", ErrModelUnavailable, err)
	}
	if err := vec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: vectorizer %s: %v", ErrModelUnavailable, vectorizerPath, err)
	}

	var clf LinearClassifier
	if err := readJSON(modelPath, &clf); err != nil {
		return nil, fmt.Errorf("%w: load classifier: %v", ErrModelUnavailable, err)
	}
	if err := clf.Validate(vec.Features()); err != nil {
		return nil, fmt.Errorf("%w: classifier %s: %v", ErrModelUnavailable, modelPath, err)
	}

	return &Model{Vectorizer: &vec, Predictor: &clf}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	ModelPath      string
	VectorizerPath string
	// RetryInitial is the wait after the first failed load before another
	// attempt is made. It doubles on each consecutive failure up to RetryMax.
	RetryInitial time.Duration
	RetryMax     time.Duration
	Logger       *logrus.Logger
}

// Loader loads the model on first use and keeps it for the life of the
// process. Concurrent callers share a single load attempt. A failed load is
// not cached permanently: callers get the last failure until the retry
// window passes, then the next caller tries again.
type Loader struct {
	cfg    LoaderConfig
	logger *logrus.Logger
	load   func(modelPath, vectorizerPath string) (*Model, error)
	now    func() time.Time

	model atomic.Pointer[Model]

	mu          sync.Mutex
	lastErr     error
	failures    int
	nextAttempt time.Time
}

// NewLoader creates a Loader. Nothing is read until Model or Warm is called.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	if cfg.VectorizerPath == "" {
		cfg.VectorizerPath = DefaultVectorizerPath
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = DefaultRetryInitial
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = DefaultRetryMax
	}
	if cfg.RetryMax < cfg.RetryInitial {
		cfg.RetryMax = cfg.RetryInitial
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Loader{
		cfg:    cfg,
		logger: cfg.Logger,
		load:   LoadFiles,
		now:    time.Now,
	}
}

// Model implements ModelSource.
func (l *Loader) Model(ctx context.Context) (*Model, error) {
	if m := l.model.Load(); m != nil {
		return m, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if m := l.model.Load(); m != nil {
		return m, nil
	}
	if l.lastErr != nil && l.now().Before(l.nextAttempt) {
		return nil, l.lastErr
	}

	start := l.now()
	m, err := l.load(l.cfg.ModelPath, l.cfg.VectorizerPath)
	if err != nil {
		l.failures++
		l.lastErr = err
		wait := l.backoff()
		l.nextAttempt = l.now().Add(wait)
		modelLoadsTotal.WithLabelValues("failure").Inc()

		l.logger.WithError(err).WithFields(logrus.Fields{
			"model_path":      l.cfg.ModelPath,
			"vectorizer_path": l.cfg.VectorizerPath,
			"failures":        l.failures,
			"retry_in":        wait.String(),
		}).Error("Failed to load language classification model")
		return nil, err
	}

	l.model.Store(m)
	l.lastErr = nil
	l.failures = 0
	modelLoadsTotal.WithLabelValues("success").Inc()
	modelReady.Set(1)

	l.logger.WithFields(logrus.Fields{
		"model_path":      l.cfg.ModelPath,
		"vectorizer_path": l.cfg.VectorizerPath,
		"duration_ms":     l.now().Sub(start).Milliseconds(),
	}).Info("Language classification model loaded")

	return m, nil
}

func (l *Loader) backoff() time.Duration {
	wait := l.cfg.RetryInitial
	for i := 1; i < l.failures; i++ {
		wait *= 2
		if wait >= l.cfg.RetryMax {
			return l.cfg.RetryMax
		}
	}
	return wait
}

// Warm attempts a load immediately, for use at startup.
func (l *Loader) Warm(ctx context.Context) error {
	_, err := l.Model(ctx)
	return err
}

// Ready reports whether the model has been loaded.
func (l *Loader) Ready() bool {
	return l.model.Load() != nil
}

// LastError returns the most recent load failure, or nil.
func (l *Loader) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}
