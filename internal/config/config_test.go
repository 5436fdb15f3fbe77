package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"github.com/conorfennell/timeline/internal/scoring"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.Bool("play", false, "an action flag that is not a config key")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) failed: %v", args, err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", newFlags(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(*cfg, want) {
		t.Errorf("Expected defaults.\nwant %+v\n got %+v", want, *cfg)
	}
	if !reflect.DeepEqual(cfg.Scoring.Params(), scoring.DefaultParams()) {
		t.Errorf("Expected default scoring params, got %+v", cfg.Scoring.Params())
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
db: from-file.db
log_level: debug
game:
  card_count: 7
  categories: [war, science]
ai:
  difficulty: hard
  name: rival
scoring:
  base_score: 200
`)
	t.Setenv("TIMELINE_AI__DIFFICULTY", "expert")
	t.Setenv("TIMELINE_GAME__CARD_COUNT", "9")
	t.Setenv("TIMELINE_DB", "from-env.db")

	cfg, err := Load(path, newFlags(t, "--db", "from-flag.db", "--play"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	testCases := []struct {
		name     string
		got      any
		expected any
	}{
		{"flag beats env and file", cfg.DB, "from-flag.db"},
		{"env beats file", cfg.AI.Difficulty, "expert"},
		{"env number beats file", cfg.Game.CardCount, 9},
		{"file beats default", cfg.LogLevel, "debug"},
		{"file list", cfg.Game.Categories, []string{"war", "science"}},
		{"file nested", cfg.AI.Name, "rival"},
		{"file scoring", cfg.Scoring.BaseScore, 200.0},
		{"unset keeps default", cfg.Scoring.AttemptPenalty, 25.0},
		{"unset flag keeps default", cfg.ReposDir, "repos"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !reflect.DeepEqual(tc.got, tc.expected) {
				t.Errorf("Expected %v, but got %v", tc.expected, tc.got)
			}
		})
	}
}

func TestLoadFlagsAndEnvLists(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TIMELINE_GAME__CATEGORIES", "art, music")

	cfg, err := Load("", newFlags(t, "--seed", "42", "--opponent", "bob"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Game.Categories, []string{"art", "music"}) {
		t.Errorf("Unexpected categories %v", cfg.Game.Categories)
	}
	if cfg.Game.Seed != 42 || cfg.AI.Name != "bob" {
		t.Errorf("Expected flags to apply, got %+v", cfg)
	}

	cfg, err = Load("", newFlags(t, "--categories", "war,politics"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Game.Categories, []string{"war", "politics"}) {
		t.Errorf("Expected the flag to override env categories, got %v", cfg.Game.Categories)
	}
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"card count too high", "game:\n  card_count: 51"},
		{"unknown difficulty", "ai:\n  difficulty: impossible"},
		{"bad log level", "log_level: loud"},
		{"negative rate", "scoring:\n  time_bonus_rate: -1"},
		{"negative score", "scoring:\n  min_score: -5"},
		{"bad glob", "deck_glob: '[oops'"},
		{"empty opponent", "ai:\n  name: ''"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml), nil)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, but got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}

func TestSettings(t *testing.T) {
	cfg := Default()
	cfg.Game.Categories = []string{"war"}
	s := cfg.Settings()
	if s.Difficulty != "medium" || s.CardCount != 5 || len(s.Categories) != 1 {
		t.Errorf("Unexpected settings %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected default settings to validate, got %v", err)
	}
}
