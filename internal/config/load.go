package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultSourceDir = "."
	defaultTargetDir = "site"
	defaultPort      = 4000
	defaultBranch    = "deploy"
)

// Load reads a YAML configuration file, applies environment overrides and
// normalizes paths to absolute form. The returned Settings is complete: no
// later code path needs to re-check defaults.
func Load(path string) (*Settings, error) {
	// .env values feed the QUINE_* overrides below; absence is not an error.
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment file", "path", envPath)
			break
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}

	applyEnvOverrides(&s)

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration directory: %w", err)
	}
	if err := Normalize(&s, base); err != nil {
		return nil, err
	}
	return &s, nil
}

// applyEnvOverrides lets QUINE_* environment variables take precedence over
// file values (the same precedence order the .env loader establishes).
func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("QUINE_SOURCE"); v != "" {
		s.Source = v
	}
	if v := os.Getenv("QUINE_TARGET"); v != "" {
		s.Target = v
	}
	if v := os.Getenv("QUINE_SITE_URL"); v != "" {
		s.Site.URL = v
	}
	if v := os.Getenv("QUINE_DEPLOY_REMOTE"); v != "" {
		s.Deploy.Remote = v
	}
	if v := os.Getenv("QUINE_DEPLOY_TOKEN"); v != "" {
		if s.Deploy.Auth == nil {
			s.Deploy.Auth = &AuthConfig{Type: AuthTypeToken}
		}
		s.Deploy.Auth.Token = v
	}
}

// Normalize fills defaults and converts source/target/ignore paths to
// absolute form against base. Called by Load; exported for tests and for
// callers that assemble Settings in code.
func Normalize(s *Settings, base string) error {
	if s.Source == "" {
		s.Source = defaultSourceDir
	}
	if s.Target == "" {
		s.Target = defaultTargetDir
	}
	if !filepath.IsAbs(s.Source) {
		s.Source = filepath.Join(base, s.Source)
	}
	if !filepath.IsAbs(s.Target) {
		s.Target = filepath.Join(base, s.Target)
	}
	s.Source = filepath.Clean(s.Source)
	s.Target = filepath.Clean(s.Target)

	if s.Serve.Port == 0 {
		s.Serve.Port = defaultPort
	}
	if s.Serve.RebuildEvery != "" {
		if _, err := time.ParseDuration(s.Serve.RebuildEvery); err != nil {
			return fmt.Errorf("invalid serve.rebuild_every %q: %w", s.Serve.RebuildEvery, err)
		}
	}
	if s.Deploy.Branch == "" {
		s.Deploy.Branch = defaultBranch
	}
	if s.Log.Level == "" {
		s.Log.Level = LogLevelInfo
	}
	if s.Log.Format == "" {
		s.Log.Format = LogFormatText
	}
	if s.FS == nil {
		s.FS = osfs.New("/")
	}
	return nil
}

// SlogLevel maps the configured level onto slog's.
func (s *Settings) SlogLevel() slog.Level {
	switch s.Log.Level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
