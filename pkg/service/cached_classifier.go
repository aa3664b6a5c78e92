package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/myanlang/pkg/cache"
	"github.com/dasmlab/myanlang/pkg/langid"
)

// cachedClassifier consults a cache before the wrapped classifier. Cache
// failures are logged and otherwise ignored; only successful classifications
// are stored.
type cachedClassifier struct {
	inner  langid.TextClassifier
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

func (c *cachedClassifier) Classify(ctx context.Context, text string) (langid.Result, error) {
	if text == "" {
		return c.inner.Classify(ctx, text)
	}

	if res, ok, err := c.cache.Get(ctx, text); err != nil {
		c.logger.WithError(err).Warn("Classification cache lookup failed")
	} else if ok {
		return res, nil
	}

	res, err := c.inner.Classify(ctx, text)
	if err != nil {
		return res, err
	}

	if err := c.cache.Set(ctx, text, res, c.ttl); err != nil {
		c.logger.WithError(err).Warn("Classification cache store failed")
	}
	return res, nil
}
