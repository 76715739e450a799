package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads seeds and term lists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".recipecrawl")
		content := `seeds:
  - example.com
  - https://cooking.example.org/recipes
positive_terms:
  - recipe
  - rezept
negative_terms:
  - login
  - cart
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if len(cf.Seeds) != 2 {
			t.Errorf("expected 2 seeds, got %d", len(cf.Seeds))
		}
		if len(cf.PositiveTerms) != 2 || cf.PositiveTerms[0] != "recipe" {
			t.Errorf("unexpected positive terms: %v", cf.PositiveTerms)
		}
		if len(cf.NegativeTerms) != 2 || cf.NegativeTerms[1] != "cart" {
			t.Errorf("unexpected negative terms: %v", cf.NegativeTerms)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed YAML returns an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".recipecrawl")
		if err := os.WriteFile(path, []byte("seeds: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

// TestFindConfigFile tests the search order.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("seeds: []"), 0600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestMerge tests applying a config file onto a Config.
func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("file seeds append, terms replace", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Seeds = []string{"cli.example.com"}
		cfg.PositiveTerms = []string{"builtin"}

		cfg.Merge(&File{
			Seeds:         []string{"file.example.com"},
			PositiveTerms: []string{"recipe"},
		})

		if len(cfg.Seeds) != 2 || cfg.Seeds[1] != "file.example.com" {
			t.Errorf("unexpected seeds: %v", cfg.Seeds)
		}
		if len(cfg.PositiveTerms) != 1 || cfg.PositiveTerms[0] != "recipe" {
			t.Errorf("unexpected positive terms: %v", cfg.PositiveTerms)
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Seeds = []string{"a"}
		cfg.Merge(nil)

		if len(cfg.Seeds) != 1 {
			t.Errorf("expected seeds unchanged, got %v", cfg.Seeds)
		}
	})
}
