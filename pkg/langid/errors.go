package langid

import "errors"

var (
	// ErrModelUnavailable means the classification model or its vectorizer
	// could not be loaded. Errors returned for a failed load wrap it.
	ErrModelUnavailable = errors.New("language classification model not loaded")

	// ErrEmptyText is returned when classification is requested for empty text.
	ErrEmptyText = errors.New("no text provided")

	// ErrUnknownLabel is returned when a model label maps to no supported language.
	ErrUnknownLabel = errors.New("unrecognized language label")

	// ErrUnsupportedLanguage is returned for language codes other than my and en.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
