package translate

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EngineType represents the type of translation engine to use.
type EngineType string

const (
	// EnginePlaceholder labels text instead of translating it.
	EnginePlaceholder EngineType = "placeholder"
	// EngineLibreTranslate uses LibreTranslate as the backend.
	EngineLibreTranslate EngineType = "libretranslate"
)

// Config holds configuration for creating a Translator instance.
type Config struct {
	// Engine specifies which translation engine to use.
	Engine EngineType
	// BaseURL is the base URL for the translation engine API.
	// Only used by network-backed engines.
	BaseURL string
	// APIKey authenticates against hosted engines. Optional.
	APIKey string
	// Timeout bounds each engine request. Zero keeps the engine default.
	Timeout time.Duration
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// NewTranslator creates a new Translator instance based on the configuration.
// The returned Translator records request metrics labelled by engine.
func NewTranslator(cfg Config) (Translator, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Engine == "" {
		cfg.Engine = EnginePlaceholder
	}

	cfg.Logger.WithFields(logrus.Fields{
		"engine":   cfg.Engine,
		"base_url": cfg.BaseURL,
	}).Info("Creating translator instance")

	var t Translator
	switch cfg.Engine {
	case EnginePlaceholder:
		t = NewPlaceholderTranslator()
	case EngineLibreTranslate:
		t = NewLibreTranslateClient(cfg.BaseURL, cfg.Logger, WithAPIKey(cfg.APIKey), WithTimeout(cfg.Timeout))
	default:
		cfg.Logger.WithFields(logrus.Fields{
			"engine": cfg.Engine,
		}).Error("Unknown translation engine")
		return nil, fmt.Errorf("unknown translation engine: %s", cfg.Engine)
	}

	return NewInstrumented(t, string(cfg.Engine)), nil
}

// ParseEngineType parses a string into an EngineType.
// Returns an error if the string is not a valid engine type.
func ParseEngineType(s string) (EngineType, error) {
	switch strings.ToLower(s) {
	case "placeholder", "mock", "":
		return EnginePlaceholder, nil
	case "libretranslate":
		return EngineLibreTranslate, nil
	default:
		return "", fmt.Errorf("unknown engine type: %s (supported: placeholder, libretranslate)", s)
	}
}
