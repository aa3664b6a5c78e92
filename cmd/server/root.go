package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dasmlab/myanlang/pkg/config"
)

// commandContext carries state shared by all subcommands. Configuration is
// loaded once, after flags are parsed.
type commandContext struct {
	v          *viper.Viper
	configFile string

	cfg    *config.Config
	logger *logrus.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if c.configFile != "" {
		c.v.SetConfigFile(c.configFile)
	}

	cfg, err := config.Load(c.v)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.logger = newLogger(cfg.Log)
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "myanlang",
		Short:         "Myanmar/English language detection and translation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFile, "config", "c", "", "Configuration file path")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("model", "", "Path to the classifier model JSON")
	flags.String("vectorizer", "", "Path to the TF-IDF vectorizer JSON")
	mustBind(ctx.v, "log.level", flags.Lookup("log-level"))
	mustBind(ctx.v, "log.format", flags.Lookup("log-format"))
	mustBind(ctx.v, "model.path", flags.Lookup("model"))
	mustBind(ctx.v, "model.vectorizer_path", flags.Lookup("vectorizer"))

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newDetectCommand(ctx))
	rootCmd.AddCommand(newNormalizeCommand(ctx))

	return rootCmd
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag for %s: %v", key, err))
	}
}
