package langid

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// writeTinyModel writes tinyModel to dir and returns the classifier and
// vectorizer paths.
func writeTinyModel(t *testing.T, dir string) (string, string) {
	t.Helper()
	vec, clf := tinyModel()

	vecPath := filepath.Join(dir, "vectorizer.json")
	clfPath := filepath.Join(dir, "classifier.json")

	data, err := json.Marshal(vec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(vecPath, data, 0o644))

	data, err = json.Marshal(clf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(clfPath, data, 0o644))

	return clfPath, vecPath
}

func TestLoadFiles(t *testing.T) {
	t.Run("loads a valid pair", func(t *testing.T) {
		clfPath, vecPath := writeTinyModel(t, t.TempDir())

		m, err := LoadFiles(clfPath, vecPath)

		require.NoError(t, err)
		label, err := m.Predictor.Predict(m.Vectorizer.Transform("က"))
		require.NoError(t, err)
		assert.Equal(t, "Myanmar", label)
	})

	t.Run("missing file is model unavailable", func(t *testing.T) {
		dir := t.TempDir()

		_, err := LoadFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope2.json"))

		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("corrupt file is model unavailable", func(t *testing.T) {
		dir := t.TempDir()
		clfPath, vecPath := writeTinyModel(t, dir)
		require.NoError(t, os.WriteFile(clfPath, []byte("{not json"), 0o644))

		_, err := LoadFiles(clfPath, vecPath)

		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("incompatible format is model unavailable", func(t *testing.T) {
		dir := t.TempDir()
		clfPath, vecPath := writeTinyModel(t, dir)
		require.NoError(t, os.WriteFile(vecPath, []byte(`{"format":"sklearn-pickle"}`), 0o644))

		_, err := LoadFiles(clfPath, vecPath)

		assert.ErrorIs(t, err, ErrModelUnavailable)
	})
}

func TestLoader_Model(t *testing.T) {
	ctx := context.Background()

	t.Run("memoizes a successful load", func(t *testing.T) {
		clfPath, vecPath := writeTinyModel(t, t.TempDir())
		l := NewLoader(LoaderConfig{ModelPath: clfPath, VectorizerPath: vecPath, Logger: quietLogger()})

		var calls int32
		inner := l.load
		l.load = func(m, v string) (*Model, error) {
			atomic.AddInt32(&calls, 1)
			return inner(m, v)
		}

		first, err := l.Model(ctx)
		require.NoError(t, err)
		second, err := l.Model(ctx)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), calls)
		assert.True(t, l.Ready())
	})

	t.Run("concurrent callers share one load", func(t *testing.T) {
		l := NewLoader(LoaderConfig{Logger: quietLogger()})
		vec, clf := tinyModel()

		var calls int32
		l.load = func(string, string) (*Model, error) {
			atomic.AddInt32(&calls, 1)
			time.Sleep(20 * time.Millisecond)
			return &Model{Vectorizer: vec, Predictor: clf}, nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.Model(ctx)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls)
	})

	t.Run("failure is retried after the backoff window", func(t *testing.T) {
		l := NewLoader(LoaderConfig{
			RetryInitial: time.Second,
			RetryMax:     4 * time.Second,
			Logger:       quietLogger(),
		})
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		vec, clf := tinyModel()
		loadErr := errors.New("disk not mounted")
		var calls int
		fail := true
		l.load = func(string, string) (*Model, error) {
			calls++
			if fail {
				return nil, loadErr
			}
			return &Model{Vectorizer: vec, Predictor: clf}, nil
		}

		_, err := l.Model(ctx)
		assert.ErrorIs(t, err, loadErr)
		assert.Equal(t, 1, calls)

		// Inside the window the cached failure is returned.
		now = now.Add(500 * time.Millisecond)
		_, err = l.Model(ctx)
		assert.ErrorIs(t, err, loadErr)
		assert.Equal(t, 1, calls)

		// Window elapsed: retried, fails again, window doubles to 2s.
		now = now.Add(time.Second)
		_, err = l.Model(ctx)
		assert.Error(t, err)
		assert.Equal(t, 2, calls)

		now = now.Add(1500 * time.Millisecond)
		_, err = l.Model(ctx)
		assert.Error(t, err)
		assert.Equal(t, 2, calls)

		fail = false
		now = now.Add(time.Second)
		m, err := l.Model(ctx)
		require.NoError(t, err)
		assert.NotNil(t, m)
		assert.Equal(t, 3, calls)
		assert.NoError(t, l.LastError())
	})

	t.Run("backoff is capped", func(t *testing.T) {
		l := NewLoader(LoaderConfig{RetryInitial: time.Second, RetryMax: 5 * time.Second})

		l.failures = 1
		assert.Equal(t, time.Second, l.backoff())
		l.failures = 3
		assert.Equal(t, 4*time.Second, l.backoff())
		l.failures = 10
		assert.Equal(t, 5*time.Second, l.backoff())
	})

	t.Run("cancelled context skips the load", func(t *testing.T) {
		l := NewLoader(LoaderConfig{Logger: quietLogger()})
		l.load = func(string, string) (*Model, error) {
			t.Fatal("load should not be called")
			return nil, nil
		}

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := l.Model(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStaticSource(t *testing.T) {
	_, err := StaticSource{}.Model(context.Background())
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLoadFilesSampleModel(t *testing.T) {
	m, err := LoadFiles(filepath.Join("testdata", "classifier.json"), filepath.Join("testdata", "vectorizer.json"))
	require.NoError(t, err)
	c := NewClassifier(StaticSource{M: m}, quietLogger())

	tests := []struct {
		text     string
		want     string
		wantConf float64
	}{
		// six unit features: |-2*6/sqrt(6)|
		{"The", "English", 2 * math.Sqrt(6)},
		// five unit features: 2*5/sqrt(5)
		{"မင်္ဂလာပါ", "Myanmar", 2 * math.Sqrt(5)},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			res, err := c.Classify(context.Background(), tt.text)

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Label)
			require.NotNil(t, res.Confidence)
			assert.InDelta(t, tt.wantConf, *res.Confidence, 1e-9)
		})
	}
}
