package config

import (
	"time"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Engine     Engine     `yaml:"engine"`
	GitHub     HostAuth   `yaml:"github"`
	GitLab     HostAuth   `yaml:"gitlab"`
	Tracker    Tracker    `yaml:"tracker"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type HTTPClient struct {
	Debug            bool          `yaml:"debug"`
	RetryCount       int           `yaml:"retry_count"`
	RetryWaitTime    time.Duration `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration `yaml:"retry_max_wait_time"`
	Timeout          time.Duration `yaml:"timeout"`
	TLSClientConfig  TLSConfig     `yaml:"tls_client_config"`
	Proxy            Proxy         `yaml:"proxy"`
}

// TLSConfig controls certificate verification. Verify is a pointer so an
// absent directive can be told apart from an explicit false.
type TLSConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Engine holds the tunables of the review engine. Zero values fall back to the
// defaults below at validation time.
type Engine struct {
	Jobs             int           `yaml:"jobs"`
	MaxFileSizeBytes int64         `yaml:"max_file_size_bytes"`
	FunctionLines    int           `yaml:"function_lines"`
	Complexity       int           `yaml:"complexity"`
	LineLength       int           `yaml:"line_length"`
	SecretMinLength  int           `yaml:"secret_min_length"`
	SecretEntropy    float64       `yaml:"secret_entropy"`
	ToolTimeout      time.Duration `yaml:"tool_timeout"`
	FormatterCmd     []string      `yaml:"formatter_cmd"`
	LinterCmd        []string      `yaml:"linter_cmd"`
	TypeCheckerCmd   []string      `yaml:"type_checker_cmd"`
}

// HostAuth configures one source-control host. Tokens may also come from the
// environment (GITHUB_TOKEN / GITLAB_TOKEN), which takes precedence over the file.
type HostAuth struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// Tracker configures the issue-tracker collaborator.
type Tracker struct {
	APIKey   string `yaml:"api_key"`
	TeamID   string `yaml:"team_id"`
	Endpoint string `yaml:"endpoint"`
}

const (
	DefaultMaxFileSizeBytes = int64(1 << 20)
	DefaultFunctionLines    = 50
	DefaultComplexity       = 10
	DefaultLineLength       = 120
	DefaultSecretMinLength  = 20
	DefaultSecretEntropy    = 3.5
	DefaultToolTimeout      = 60 * time.Second
)
