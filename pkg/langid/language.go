package langid

import (
	"fmt"
	"strings"
)

// Language is a supported language code.
type Language string

const (
	Myanmar Language = "my"
	English Language = "en"
)

// LowConfidenceLabel is the label substituted when the classifier's margin
// falls below LowConfidenceThreshold.
const LowConfidenceLabel = "English"

// LowConfidenceThreshold is the decision margin under which a prediction is
// replaced by LowConfidenceLabel.
const LowConfidenceThreshold = 0.4

// labelSynonyms maps lower-cased model labels to languages.
var labelSynonyms = map[string]Language{
	"my":      Myanmar,
	"mya":     Myanmar,
	"bur":     Myanmar,
	"burmese": Myanmar,
	"myanmar": Myanmar,
	"en":      English,
	"eng":     English,
	"english": English,
}

// String returns the ISO 639-1 code.
func (l Language) String() string { return string(l) }

// Other returns the opposite supported language.
func (l Language) Other() Language {
	if l == Myanmar {
		return English
	}
	return Myanmar
}

// LanguageFromLabel maps a classifier label such as "Burmese" or "EN" to a
// Language.
func LanguageFromLabel(label string) (Language, error) {
	lang, ok := labelSynonyms[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return lang, nil
}

// ParseLanguage parses a client-supplied language code. Case is ignored and
// region subtags ("en-US", "my_MM") are dropped. Only "my" and "en" are
// accepted.
func ParseLanguage(code string) (Language, error) {
	lang := strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	switch Language(lang) {
	case Myanmar, English:
		return Language(lang), nil
	default:
		return "", fmt.Errorf("%w %q (supported: my, en)", ErrUnsupportedLanguage, code)
	}
}
