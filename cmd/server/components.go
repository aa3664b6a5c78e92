package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/myanlang/pkg/cache"
	"github.com/dasmlab/myanlang/pkg/config"
	"github.com/dasmlab/myanlang/pkg/langid"
	"github.com/dasmlab/myanlang/pkg/script"
	"github.com/dasmlab/myanlang/pkg/service"
	"github.com/dasmlab/myanlang/pkg/translate"
)

// components is the wired object graph behind every command.
type components struct {
	service    *service.LanguageService
	loader     *langid.Loader
	translator translate.Translator
	redis      *cache.Redis
	logger     *logrus.Logger
}

// buildComponents wires the service from cfg. A Redis cache that cannot be
// reached is logged and skipped.
func buildComponents(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*components, error) {
	engine, err := translate.ParseEngineType(cfg.Translate.Engine)
	if err != nil {
		return nil, err
	}
	translator, err := translate.NewTranslator(translate.Config{
		Engine:  engine,
		BaseURL: cfg.Translate.URL,
		APIKey:  cfg.Translate.APIKey,
		Timeout: cfg.Translate.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	loader := langid.NewLoader(langid.LoaderConfig{
		ModelPath:      cfg.Model.Path,
		VectorizerPath: cfg.Model.VectorizerPath,
		RetryInitial:   cfg.Model.RetryInitial,
		RetryMax:       cfg.Model.RetryMax,
		Logger:         logger,
	})

	c := &components{loader: loader, translator: translator, logger: logger}

	var classificationCache cache.Cache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		r, err := cache.Dial(dialCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, classification cache disabled")
		} else {
			logger.WithFields(logrus.Fields{
				"addr": cfg.Redis.Addr,
				"ttl":  cfg.Cache.TTL.String(),
			}).Info("Classification cache enabled")
			c.redis = r
			classificationCache = r
		}
	}

	c.service = service.NewLanguageService(service.Config{
		Normalizer:    script.NewNormalizer(logger),
		Classifier:    langid.NewClassifier(loader, logger),
		Translator:    translator,
		Cache:         classificationCache,
		CacheTTL:      cfg.Cache.TTL,
		Readiness:     loader,
		MaxTextLength: cfg.Limits.MaxTextLength,
		Logger:        logger,
	})
	return c, nil
}

func (c *components) Close() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		c.logger.WithError(err).Warn("Failed to close Redis client")
	}
}
