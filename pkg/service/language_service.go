package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/myanlang/pkg/cache"
	"github.com/dasmlab/myanlang/pkg/langid"
	"github.com/dasmlab/myanlang/pkg/script"
	"github.com/dasmlab/myanlang/pkg/translate"
)

const (
	// DefaultMaxTextLength is the rune limit applied when none is configured.
	DefaultMaxTextLength = 5000
	// DefaultCacheTTL is how long classification results are cached.
	DefaultCacheTTL = time.Hour
)

// Normalizer converts text to standard Unicode.
type Normalizer interface {
	NormalizeDetailed(text string) script.Result
}

// Readiness reports whether the classification model is loaded.
type Readiness interface {
	Ready() bool
}

// loadErrorReporter is implemented by readiness sources that remember why
// the last load failed, such as langid.Loader.
type loadErrorReporter interface {
	LastError() error
}

// Config holds the collaborators of a LanguageService. Classifier, Normalizer
// and Translator are required.
type Config struct {
	Normalizer Normalizer
	Classifier langid.TextClassifier
	Translator translate.Translator
	// Cache defaults to cache.Nop.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Readiness defaults to always ready.
	Readiness     Readiness
	MaxTextLength int
	Logger        *logrus.Logger
}

// LanguageService runs the Myanmar text pipeline: normalize the script,
// classify or detect the language, then translate. It backs both the HTTP
// and gRPC surfaces.
type LanguageService struct {
	normalizer    Normalizer
	classifier    langid.TextClassifier
	policy        *langid.Policy
	translator    translate.Translator
	readiness     Readiness
	maxTextLength int
	logger        *logrus.Logger
}

// TranslateInput is a translation request. Empty languages are filled in:
// the source by detection, the target as the opposite of the source.
type TranslateInput struct {
	Text       string
	SourceLang string
	TargetLang string
}

// TranslateOutput is a translation result.
type TranslateOutput struct {
	Result     string          `json:"result"`
	SourceLang langid.Language `json:"source_lang"`
	TargetLang langid.Language `json:"target_lang"`
}

// DetectOutput is a language decision together with the normalized text it
// was made on.
type DetectOutput struct {
	langid.Decision
	Text string `json:"text"`
}

type alwaysReady struct{}

func (alwaysReady) Ready() bool { return true }

// NewLanguageService creates a LanguageService.
func NewLanguageService(cfg Config) *LanguageService {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.Nop{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Readiness == nil {
		cfg.Readiness = alwaysReady{}
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}

	classifier := &cachedClassifier{
		inner:  cfg.Classifier,
		cache:  cfg.Cache,
		ttl:    cfg.CacheTTL,
		logger: cfg.Logger,
	}

	return &LanguageService{
		normalizer:    cfg.Normalizer,
		classifier:    classifier,
		policy:        langid.NewPolicy(classifier, cfg.Logger),
		translator:    cfg.Translator,
		readiness:     cfg.Readiness,
		maxTextLength: cfg.MaxTextLength,
		logger:        cfg.Logger,
	}
}

// Ready reports whether the classification model is loaded.
func (s *LanguageService) Ready() bool {
	return s.readiness.Ready()
}

// NotReadyReason returns nil once the model is loaded. Otherwise it returns
// the last load failure when known, or langid.ErrModelUnavailable.
func (s *LanguageService) NotReadyReason() error {
	if s.readiness.Ready() {
		return nil
	}
	if r, ok := s.readiness.(loadErrorReporter); ok {
		if err := r.LastError(); err != nil {
			return err
		}
	}
	return langid.ErrModelUnavailable
}

func (s *LanguageService) validate(text string) error {
	if text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, langid.ErrEmptyText)
	}
	if n := utf8.RuneCountInString(text); n > s.maxTextLength {
		return fmt.Errorf("%w: %w: %d characters exceeds limit of %d", ErrInvalidInput, ErrTextTooLong, n, s.maxTextLength)
	}
	return nil
}

// Normalize converts text to standard Unicode.
func (s *LanguageService) Normalize(text string) (script.Result, error) {
	if err := s.validate(text); err != nil {
		return script.Result{}, err
	}
	return s.normalizer.NormalizeDetailed(text), nil
}

// Classify normalizes text and runs the statistical classifier on it. It
// fails with an error matching langid.ErrModelUnavailable when no model can
// be loaded.
func (s *LanguageService) Classify(ctx context.Context, text string) (langid.Result, error) {
	if err := s.validate(text); err != nil {
		return langid.Result{}, err
	}

	normalized := s.normalizer.NormalizeDetailed(text).Text
	res, err := s.classifier.Classify(ctx, normalized)
	if err != nil {
		s.logger.WithError(err).Warn("Language classification failed")
		return langid.Result{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"language":    res.Label,
		"text_length": len(normalized),
	}).Debug("Classified text")

	return res, nil
}

// Detect normalizes text and decides its language. Only input validation can
// fail; an unavailable model falls back to script detection.
func (s *LanguageService) Detect(ctx context.Context, text string) (DetectOutput, error) {
	if err := s.validate(text); err != nil {
		return DetectOutput{}, err
	}

	normalized := s.normalizer.NormalizeDetailed(text).Text
	return DetectOutput{
		Decision: s.policy.DetectDecision(ctx, normalized),
		Text:     normalized,
	}, nil
}

// Translate normalizes the input, resolves missing languages and calls the
// configured translator.
func (s *LanguageService) Translate(ctx context.Context, in TranslateInput) (*TranslateOutput, error) {
	if err := s.validate(in.Text); err != nil {
		return nil, err
	}

	normalized := s.normalizer.NormalizeDetailed(in.Text).Text

	var source langid.Language
	if in.SourceLang == "" {
		source = s.policy.Detect(ctx, normalized)
	} else {
		var err error
		if source, err = langid.ParseLanguage(in.SourceLang); err != nil {
			return nil, fmt.Errorf("%w: source_lang: %w", ErrInvalidInput, err)
		}
	}

	target := source.Other()
	if in.TargetLang != "" {
		var err error
		if target, err = langid.ParseLanguage(in.TargetLang); err != nil {
			return nil, fmt.Errorf("%w: target_lang: %w", ErrInvalidInput, err)
		}
	}

	result, err := s.translator.Translate(ctx, normalized, source.String(), target.String())
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"source_lang": source,
			"target_lang": target,
		}).Error("Translation failed")
		return nil, fmt.Errorf("translate: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source_lang": source,
		"target_lang": target,
		"detected":    in.SourceLang == "",
		"text_length": len(normalized),
	}).Info("Translation completed")

	return &TranslateOutput{Result: result, SourceLang: source, TargetLang: target}, nil
}
