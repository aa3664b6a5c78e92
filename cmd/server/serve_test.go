package main

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasmlab/myanlang/pkg/translate"
)

type stubTranslator struct {
	translate.PlaceholderTranslator
	healthErr error
	langs     []string
	langsErr  error
}

func (s stubTranslator) CheckHealth(context.Context) error { return s.healthErr }

func (s stubTranslator) SupportedLanguages(context.Context) ([]string, error) {
	return s.langs, s.langsErr
}

func TestCheckTranslator(t *testing.T) {
	t.Run("logs supported languages", func(t *testing.T) {
		logger, hook := test.NewNullLogger()

		checkTranslator(context.Background(), translate.NewPlaceholderTranslator(), logger)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, "Translator supports all service languages", entry.Message)
		assert.Equal(t, []string{"my", "en"}, entry.Data["languages"])
	})

	t.Run("warns on missing language", func(t *testing.T) {
		logger, hook := test.NewNullLogger()

		checkTranslator(context.Background(), stubTranslator{langs: []string{"en", "fr"}}, logger)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, []string{"my"}, entry.Data["missing"])
	})

	t.Run("health failure skips language listing", func(t *testing.T) {
		logger, hook := test.NewNullLogger()

		checkTranslator(context.Background(), stubTranslator{healthErr: errors.New("connection refused")}, logger)

		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "Translator health check failed, but continuing anyway", hook.LastEntry().Message)
	})

	t.Run("listing failure is a warning", func(t *testing.T) {
		logger, hook := test.NewNullLogger()

		checkTranslator(context.Background(), stubTranslator{langsErr: errors.New("bad gateway")}, logger)

		entries := hook.AllEntries()
		require.Len(t, entries, 2)
		assert.Equal(t, "Translator health check passed", entries[0].Message)
		assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	})
}
