package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/praetorian-inc/urlspan/pkg/config"
)

var (
	verbose    bool
	quiet      bool
	configPath string

	logger = zap.NewNop()
	cfg    = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "urlspan",
	Short: "urlspan - find URLs in text without swallowing surrounding brackets",
	Long: `urlspan locates http and https URLs in text, files, documents and git history.
A URL wrapped in (), [], {} or <> keeps its own balanced brackets but never
the wrapper, so "(see https://en.wikipedia.org/wiki/Foo_(bar))" yields the
Wikipedia link with its trailing ")" intact.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath+" if present)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

// setup builds the logger and applies config-file defaults to flags the
// user did not set.
func setup(cmd *cobra.Command, args []string) error {
	logger = newLogger(cmd.ErrOrStderr(), verbose, quiet)

	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional(config.DefaultPath)
	}
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", zap.String("path", configPath), zap.String("format", cfg.Format))

	var skip []string
	if v := cmd.Annotations[configSkipAnnotation]; v != "" {
		skip = strings.Split(v, ",")
	}
	return applyConfig(cmd.Flags(), cfg, skip...)
}

// newLogger writes human-readable logs to w. Info is the default level.
func newLogger(w io.Writer, verbose, quiet bool) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case quiet:
		level = zapcore.ErrorLevel
	case verbose:
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if verbose {
		encoderConfig.TimeKey = "time"
		encoderConfig.CallerKey = "caller"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core, zap.AddCaller())
}

// configSkipAnnotation lists flags a command does not take from the config file.
const configSkipAnnotation = "urlspan/config-skip"

// applyConfig copies config values into every registered flag that was not
// given on the command line.
func applyConfig(flags *pflag.FlagSet, c *config.Config, skip ...string) error {
	values := map[string]string{
		"output":         c.Output,
		"datastore":      c.Output,
		"format":         c.Format,
		"color":          c.Color,
		"context-lines":  strconv.Itoa(c.ContextLines),
		"max-file-size":  strconv.FormatInt(c.MaxFileSize, 10),
		"include-hidden": strconv.FormatBool(c.IncludeHidden),
		"extract":        c.Extract,
		"incremental":    strconv.FormatBool(c.Incremental),
		"dedupe":         c.Dedupe,
		"schemes":        strings.Join(c.Schemes, ","),
	}

	for name, value := range values {
		flag := flags.Lookup(name)
		if flag == nil || flag.Changed || slices.Contains(skip, name) {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("applying config value %s=%q: %w", name, value, err)
		}
		// Set marks the flag as changed; clear it so later runs still see
		// command-line precedence.
		flag.Changed = false
	}
	return nil
}
