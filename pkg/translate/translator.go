package translate

import (
	"context"
)

// Translator defines the interface for machine translation backends.
// This abstraction allows switching between the placeholder engine and a real
// MT service without changing the HTTP or gRPC layers.
type Translator interface {
	// Translate translates text from source language to target language.
	// sourceLang and targetLang are ISO 639-1 codes ("my", "en").
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// CheckHealth verifies that the translation backend is ready and operational.
	CheckHealth(ctx context.Context) error

	// SupportedLanguages returns the ISO 639-1 codes supported by this backend.
	SupportedLanguages(ctx context.Context) ([]string, error)
}
