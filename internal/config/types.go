package config

import (
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/jakeisnt/quine/internal/fspath"
)

// Settings is the build configuration snapshot threaded through every call in
// the core. It is read-only after Load/Normalize: the resolver, nodes and
// builder must never mutate it, and a node created under one Settings must
// not be reused under another.
type Settings struct {
	Site   SiteConfig   `yaml:"site"`
	Source string       `yaml:"source"`
	Target string       `yaml:"target"`
	Ignore []string     `yaml:"ignore,omitempty"`
	Serve  ServeConfig  `yaml:"serve,omitempty"`
	Deploy DeployConfig `yaml:"deploy,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`

	// FS is the filesystem the core reads sources from and writes output to.
	// Defaults to the host filesystem; tests inject an in-memory one.
	FS billy.Filesystem `yaml:"-"`
}

// SiteConfig names the site. Used only for content generation (page shells,
// directory listings), never for graph logic.
type SiteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url,omitempty"`
}

// ServeConfig configures the development server.
type ServeConfig struct {
	Port int `yaml:"port,omitempty"`
	// RebuildEvery, when set (e.g. "10m"), schedules periodic full rebuilds
	// in addition to the watcher-triggered ones.
	RebuildEvery string `yaml:"rebuild_every,omitempty"`
}

// DeployConfig configures the git deploy target.
type DeployConfig struct {
	Remote string      `yaml:"remote,omitempty"`
	Branch string      `yaml:"branch,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthType enumerates supported authentication methods (stringly for YAML compatibility)
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Type     AuthType `yaml:"type"` // ssh|token|basic|none
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// IsZero reports whether no auth method is specified.
func (a *AuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == AuthTypeNone }

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel canonicalizes user input returning empty string if unknown.
func NormalizeLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(LogLevelDebug):
		return LogLevelDebug
	case string(LogLevelInfo):
		return LogLevelInfo
	case string(LogLevelWarn):
		return LogLevelWarn
	case string(LogLevelError):
		return LogLevelError
	default:
		return ""
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// SourcePath returns the configured source directory as an absolute path.
func (s *Settings) SourcePath() fspath.Path { return fspath.Abs(s.Source) }

// TargetPath returns the configured output directory as an absolute path.
func (s *Settings) TargetPath() fspath.Path { return fspath.Abs(s.Target) }

// IgnorePaths returns the configured ignore list resolved against the source
// directory (entries may be absolute or source-relative).
func (s *Settings) IgnorePaths() []fspath.Path {
	out := make([]fspath.Path, 0, len(s.Ignore))
	for _, raw := range s.Ignore {
		out = append(out, fspath.New(s.Source, raw))
	}
	return out
}
