package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/nlcal/internal/profile"
	"github.com/hrygo/nlcal/plugin/ai"
	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
	"github.com/hrygo/nlcal/plugin/ai/oracle"
	"github.com/hrygo/nlcal/plugin/ai/schedule"
	"github.com/hrygo/nlcal/server/service/calendar"
	"github.com/hrygo/nlcal/server/timezone"
	"github.com/hrygo/nlcal/store"
	"github.com/hrygo/nlcal/store/db"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "nlcal",
	Short: "Turn natural-language requests into calendar entries",
	Long: `nlcal asks a language model when a request happens, samples it until
the answers agree, and resolves the agreed expression to a calendar date.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if path := viper.GetString("config"); path != "" {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "failed to read config %s", path)
			}
		}
		logger, err := newLogger(viper.GetString("log-level"), viper.GetString("log-format"), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("output", "text")
	viper.SetDefault("log-level", "warn")
	viper.SetDefault("log-format", "text")

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.String("mode", "demo", `mode of nlcal, can be "prod" or "dev" or "demo"`)
	flags.String("data", "", "data directory for the sqlite database")
	flags.String("driver", "sqlite", "database driver, sqlite or postgres")
	flags.String("dsn", "", "database source name")
	flags.String("now", "", "reference instant (RFC3339 or YYYY-MM-DD[ HH:MM]), default now")
	flags.String("timezone", "", "reference zone (IANA name or +hh:mm), default local")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	flags.String("llm-provider", "", "LLM provider: ollama, openai or deepseek")
	flags.String("llm-model", "", "LLM model name")
	flags.String("llm-base-url", "", "LLM endpoint base URL")
	flags.Int("quorum", 0, "identical answers required to accept a value")
	flags.Int("max-attempts", 0, "model calls allowed per extraction")
	flags.Int("concurrency", 0, "model calls in flight per extraction")

	for _, name := range []string{
		"config", "mode", "data", "driver", "dsn", "now", "timezone", "output", "log-level", "log-format",
		"llm-provider", "llm-model", "llm-base-url", "quorum", "max-attempts", "concurrency",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("nlcal")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(newScheduleCmd(), newWhenCmd(), newResolveCmd(), newListCmd(), newDeleteCmd(), newServeCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadProfile reads NLCAL_* variables, then applies flags and config values.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version,
	}
	if err := p.FromEnv(); err != nil {
		return nil, err
	}

	if viper.IsSet("llm-provider") {
		p.LLMProvider = viper.GetString("llm-provider")
	}
	if viper.IsSet("llm-model") {
		p.LLMModel = viper.GetString("llm-model")
	}
	if viper.IsSet("llm-base-url") {
		p.LLMBaseURL = viper.GetString("llm-base-url")
	}
	if viper.IsSet("quorum") {
		p.Quorum = viper.GetInt("quorum")
	}
	if viper.IsSet("max-attempts") {
		p.MaxAttempts = viper.GetInt("max-attempts")
	}
	if viper.IsSet("concurrency") {
		p.Concurrency = viper.GetInt("concurrency")
	}
	if viper.IsSet("timezone") {
		p.Timezone = viper.GetString("timezone")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.Errorf("invalid log format %q", format)
	}
}

// newCalendarService builds the model-backed service. st may be nil.
func newCalendarService(p *profile.Profile, st *store.Store) (*calendar.Service, error) {
	cfg := ai.NewConfigFromProfile(p)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid LLM configuration")
	}
	completer, err := oracle.NewCompleter(cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	sampler, err := consensus.NewSampler(cfg.Sampling, slog.Default())
	if err != nil {
		return nil, err
	}
	parser, err := schedule.NewParser(completer, sampler)
	if err != nil {
		return nil, err
	}
	if p.CacheTTL > 0 {
		parser = parser.WithCache(p.CacheSize, p.CacheTTL)
	}

	var entries calendar.Store
	if st != nil {
		entries = st
	}
	return calendar.NewService(parser, entries, nil, slog.Default()), nil
}

// openStore opens and migrates the entry database.
func openStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}
	return st, nil
}

// reference resolves --now and --timezone into the reference instant.
func reference(p *profile.Profile) (aitime.Reference, error) {
	ref, err := timezone.ReferenceAt(viper.GetString("now"), p.Timezone)
	if err != nil {
		return aitime.Reference{}, fmt.Errorf("invalid reference: %w", err)
	}
	return ref, nil
}
