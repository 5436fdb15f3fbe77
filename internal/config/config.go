// Package config loads settings from defaults, an optional YAML file,
// TIMELINE_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/timeline/internal/ai"
	"github.com/conorfennell/timeline/internal/domain"
	"github.com/conorfennell/timeline/internal/scoring"
)

const (
	// DefaultFile is read when no config file is named and it exists.
	DefaultFile = "timeline.yaml"
	// EnvPrefix marks environment variables that override config keys.
	// A double underscore separates nested keys: TIMELINE_GAME__CARD_COUNT.
	EnvPrefix = "TIMELINE_"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete application configuration.
type Config struct {
	DB       string  `koanf:"db" validate:"required"`
	ReposDir string  `koanf:"repos_dir" validate:"required"`
	LogLevel string  `koanf:"log_level" validate:"oneof=debug info warn error"`
	DeckGlob string  `koanf:"deck_glob" validate:"required,glob"`
	Game     Game    `koanf:"game"`
	AI       AI      `koanf:"ai"`
	Scoring  Scoring `koanf:"scoring"`
}

// Game holds the defaults for new games.
type Game struct {
	CardCount  int      `koanf:"card_count" validate:"min=1,max=50"`
	Categories []string `koanf:"categories" validate:"dive,required"`
	Seed       int64    `koanf:"seed"` // 0 seeds from the clock
}

// AI configures the computer opponent.
type AI struct {
	Difficulty     string `koanf:"difficulty" validate:"oneof=easy medium hard expert"`
	MemoryCapacity int    `koanf:"memory_capacity" validate:"min=1"`
	Name           string `koanf:"name" validate:"required"` // key its memory is saved under
}

// Scoring mirrors scoring.Params.
type Scoring struct {
	BaseScore      float64 `koanf:"base_score" validate:"gte=0"`
	TimeBonusMax   float64 `koanf:"time_bonus_max" validate:"gte=0"`
	TimeBonusRate  float64 `koanf:"time_bonus_rate" validate:"gte=0"`
	AttemptPenalty float64 `koanf:"attempt_penalty" validate:"gte=0"`
	MinScore       float64 `koanf:"min_score" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := scoring.DefaultParams()
	return Config{
		DB:       "timeline.db",
		ReposDir: "repos",
		LogLevel: "info",
		DeckGlob: "**/*.{md,yaml,yml}",
		Game: Game{
			CardCount: domain.DefaultCardCount,
		},
		AI: AI{
			Difficulty:     "medium",
			MemoryCapacity: ai.DefaultMemoryCapacity,
			Name:           "default",
		},
		Scoring: Scoring{
			BaseScore:      p.BaseScore,
			TimeBonusMax:   p.TimeBonusMax,
			TimeBonusRate:  p.TimeBonusRate,
			AttemptPenalty: p.AttemptPenalty,
			MinScore:       p.MinScore,
		},
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"db":         "db",
	"repos-dir":  "repos_dir",
	"log-level":  "log_level",
	"deck-glob":  "deck_glob",
	"cards":      "game.card_count",
	"categories": "game.categories",
	"seed":       "game.seed",
	"difficulty": "ai.difficulty",
	"opponent":   "ai.name",
}

// RegisterFlags adds the flags that override config keys to fs. Their
// defaults are only shown in help; an unset flag never overrides a value
// from the file or environment.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("db", d.DB, "Path to the SQLite database file")
	fs.String("repos-dir", d.ReposDir, "Directory git sources are checked out into")
	fs.String("log-level", d.LogLevel, "Log level: debug, info, warn or error")
	fs.String("deck-glob", d.DeckGlob, "Glob selecting deck files inside a source")
	fs.Int("cards", d.Game.CardCount, "Cards dealt to each player")
	fs.StringSlice("categories", nil, "Only deal events from these categories")
	fs.Int64("seed", 0, "Random seed; 0 seeds from the clock")
	fs.String("difficulty", d.AI.Difficulty, "Opponent difficulty: easy, medium, hard or expert")
	fs.String("opponent", d.AI.Name, "Name the opponent's memory is saved under")
}

// Load builds the configuration. path names a YAML file; when empty,
// DefaultFile is used if present. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagKey(fs)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns TIMELINE_GAME__CARD_COUNT into game.card_count. Comma
// separated categories become a list.
func envKey(name, value string) (string, interface{}) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "game.categories" {
		return key, splitList(value)
	}
	return key, value
}

func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(fl.Field().String())
	})
	return v
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Params returns the scoring constants.
func (s Scoring) Params() *scoring.Params {
	return &scoring.Params{
		BaseScore:      s.BaseScore,
		TimeBonusMax:   s.TimeBonusMax,
		TimeBonusRate:  s.TimeBonusRate,
		AttemptPenalty: s.AttemptPenalty,
		MinScore:       s.MinScore,
	}
}

// Settings returns the game settings for a new match.
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		Difficulty: c.AI.Difficulty,
		CardCount:  c.Game.CardCount,
		Categories: c.Game.Categories,
	}
}
