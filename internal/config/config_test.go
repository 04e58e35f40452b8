package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewConfig tests that defaults match the documented conventions.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()

	if c.SecondarySegment != DefaultSecondarySegment {
		t.Errorf("SecondarySegment = %q, want %q", c.SecondarySegment, DefaultSecondarySegment)
	}
	if c.Extension != DefaultExtension {
		t.Errorf("Extension = %q, want %q", c.Extension, DefaultExtension)
	}
	if c.PrimaryToken != DefaultPrimaryToken || c.SecondaryToken != DefaultSecondaryToken {
		t.Errorf("flag tokens = %q/%q, want %q/%q",
			c.PrimaryToken, c.SecondaryToken, DefaultPrimaryToken, DefaultSecondaryToken)
	}
	if c.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", c.Concurrency, DefaultConcurrency)
	}
	if c.DryRun || c.SaveToDB {
		t.Error("expected booleans to default to false")
	}
}

// TestValidate tests the validation rules one by one.
func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.PrimaryDir = "/srv/site"
		c.SecondaryDir = "/srv/site/en"
		c.BaseURL = "https://example.com"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid direct trees",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name: "valid mirror selection",
			mutate: func(c *Config) {
				c.PrimaryDir = ""
				c.SecondaryDir = ""
				c.BaseURL = ""
				c.MirrorName = "docs"
			},
			wantErr: nil,
		},
		{
			name: "no trees at all",
			mutate: func(c *Config) {
				c.PrimaryDir = ""
				c.SecondaryDir = ""
			},
			wantErr: ErrNoTrees,
		},
		{
			name: "only one directory",
			mutate: func(c *Config) {
				c.SecondaryDir = ""
			},
			wantErr: ErrIncompleteTreePair,
		},
		{
			name: "missing base URL",
			mutate: func(c *Config) {
				c.BaseURL = ""
			},
			wantErr: ErrMissingBaseURL,
		},
		{
			name: "base URL without scheme",
			mutate: func(c *Config) {
				c.BaseURL = "example.com"
			},
			wantErr: ErrInvalidBaseURL,
		},
		{
			name: "extension without dot",
			mutate: func(c *Config) {
				c.Extension = "html"
			},
			wantErr: ErrInvalidExtension,
		},
		{
			name: "empty flag token",
			mutate: func(c *Config) {
				c.PrimaryToken = ""
			},
			wantErr: ErrEmptyFlagToken,
		},
		{
			name: "zero concurrency",
			mutate: func(c *Config) {
				c.Concurrency = 0
			},
			wantErr: ErrInvalidConcurrency,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tt.mutate(c)

			err := c.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestApplyMirror tests flag-over-file precedence when merging.
func TestApplyMirror(t *testing.T) {
	t.Parallel()

	m := Mirror{
		Primary:        "/srv/docs",
		Secondary:      "/srv/docs/en",
		BaseURL:        "https://docs.example.com",
		Segment:        "english",
		Extension:      ".htm",
		PrimaryToken:   "+41",
		SecondaryToken: "+2",
	}

	t.Run("fills unset fields", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		c.ApplyMirror(m)

		if c.PrimaryDir != "/srv/docs" || c.SecondaryDir != "/srv/docs/en" {
			t.Errorf("dirs = %q/%q", c.PrimaryDir, c.SecondaryDir)
		}
		if c.BaseURL != "https://docs.example.com" {
			t.Errorf("BaseURL = %q", c.BaseURL)
		}
		if c.SecondarySegment != "english" || c.Extension != ".htm" {
			t.Errorf("segment/ext = %q/%q", c.SecondarySegment, c.Extension)
		}
		if c.PrimaryToken != "+41" || c.SecondaryToken != "+2" {
			t.Errorf("tokens = %q/%q", c.PrimaryToken, c.SecondaryToken)
		}
	})

	t.Run("flags win over mirror", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		c.PrimaryDir = "/override"
		c.BaseURL = "https://other.example.com"
		c.SecondarySegment = "override-seg"
		c.ApplyMirror(m)

		if c.PrimaryDir != "/override" {
			t.Errorf("PrimaryDir = %q, want the flag value", c.PrimaryDir)
		}
		if c.BaseURL != "https://other.example.com" {
			t.Errorf("BaseURL = %q, want the flag value", c.BaseURL)
		}
		if c.SecondarySegment != "override-seg" {
			t.Errorf("SecondarySegment = %q, want the flag value", c.SecondarySegment)
		}
		// Secondary dir was unset, so the mirror supplies it.
		if c.SecondaryDir != "/srv/docs/en" {
			t.Errorf("SecondaryDir = %q, want the mirror value", c.SecondaryDir)
		}
	})
}

// TestGetMirror tests defaults merging in the config file.
func TestGetMirror(t *testing.T) {
	t.Parallel()

	cf := &File{
		Mirrors: map[string]Mirror{
			"docs": {
				Primary:   "/srv/docs",
				Secondary: "/srv/docs/en",
			},
			"blog": {
				Primary:   "/srv/blog",
				Secondary: "/srv/blog/en",
				BaseURL:   "https://blog.example.com",
				Segment:   "english",
			},
		},
		Defaults: Mirror{
			BaseURL: "https://example.com",
			Segment: "en",
		},
	}

	t.Run("defaults fill gaps", func(t *testing.T) {
		t.Parallel()

		m, ok := cf.GetMirror("docs")
		if !ok {
			t.Fatal("expected docs mirror to exist")
		}
		if m.BaseURL != "https://example.com" || m.Segment != "en" {
			t.Errorf("merged mirror = %+v", m)
		}
	})

	t.Run("entry wins over defaults", func(t *testing.T) {
		t.Parallel()

		m, ok := cf.GetMirror("blog")
		if !ok {
			t.Fatal("expected blog mirror to exist")
		}
		if m.BaseURL != "https://blog.example.com" || m.Segment != "english" {
			t.Errorf("merged mirror = %+v", m)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		if _, ok := cf.GetMirror("absent"); ok {
			t.Error("expected lookup to fail")
		}
	})
}

// TestFileNames tests deterministic mirror ordering.
func TestFileNames(t *testing.T) {
	t.Parallel()

	cf := &File{Mirrors: map[string]Mirror{
		"zeta": {}, "alpha": {}, "mid": {},
	}}

	names := cf.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

// TestLoadConfigFile tests YAML parsing and the not-found sentinel.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := strings.Join([]string{
			"defaults:",
			"  baseURL: https://example.com",
			"mirrors:",
			"  docs:",
			"    primary: /srv/docs",
			"    secondary: /srv/docs/en",
			"    segment: english",
		}, "\n")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		m, ok := cf.GetMirror("docs")
		if !ok {
			t.Fatal("expected docs mirror")
		}
		if m.Primary != "/srv/docs" || m.Segment != "english" {
			t.Errorf("mirror = %+v", m)
		}
		if m.BaseURL != "https://example.com" {
			t.Errorf("BaseURL = %q, want the default", m.BaseURL)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("mirrors: [broken"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("empty file gets mirror map", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Mirrors == nil {
			t.Error("expected an initialized mirror map")
		}
	})
}

// TestFindConfigFile tests explicit-path handling.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "custom.yml")
		if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "absent")); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}
