package translate

import (
	"context"
)

// Prefixes marking placeholder output for each target language.
const (
	EnglishPrefix = "[English]: "
	MyanmarPrefix = "[မြန်မာ]: "
)

// PlaceholderTranslator labels text with its target language instead of
// translating it. It is the default engine until a real model is deployed.
type PlaceholderTranslator struct{}

// NewPlaceholderTranslator creates a PlaceholderTranslator.
func NewPlaceholderTranslator() *PlaceholderTranslator {
	return &PlaceholderTranslator{}
}

// Translate implements Translator.
//   - my -> en: "[English]: <text>"
//   - en -> my: "[မြန်မာ]: <text>"
//   - anything else: text unchanged
func (PlaceholderTranslator) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	switch {
	case sourceLang == "my" && targetLang == "en":
		return EnglishPrefix + text, nil
	case sourceLang == "en" && targetLang == "my":
		return MyanmarPrefix + text, nil
	default:
		return text, nil
	}
}

// CheckHealth implements Translator.
func (PlaceholderTranslator) CheckHealth(context.Context) error { return nil }

// SupportedLanguages implements Translator.
func (PlaceholderTranslator) SupportedLanguages(context.Context) ([]string, error) {
	return []string{"my", "en"}, nil
}
