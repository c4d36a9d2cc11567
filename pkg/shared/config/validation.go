package config

import (
	"fmt"
	"runtime"
)

// ValidateConfig checks the loaded configuration and fills in engine defaults.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := validateEngineConfig(&cfg.Engine); err != nil {
		return fmt.Errorf("YAML global config: engine directive is invalid: %w", err)
	}
	if err := validateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	return nil
}

func validateEngineConfig(engine *Engine) error {
	if engine.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative")
	}
	if engine.Jobs == 0 {
		engine.Jobs = runtime.NumCPU()
	}
	if engine.MaxFileSizeBytes < 0 {
		return fmt.Errorf("max_file_size_bytes must not be negative")
	}
	if engine.MaxFileSizeBytes == 0 {
		engine.MaxFileSizeBytes = DefaultMaxFileSizeBytes
	}
	if engine.FunctionLines == 0 {
		engine.FunctionLines = DefaultFunctionLines
	}
	if engine.Complexity == 0 {
		engine.Complexity = DefaultComplexity
	}
	if engine.LineLength == 0 {
		engine.LineLength = DefaultLineLength
	}
	if engine.SecretMinLength == 0 {
		engine.SecretMinLength = DefaultSecretMinLength
	}
	if engine.SecretEntropy == 0 {
		engine.SecretEntropy = DefaultSecretEntropy
	}
	if engine.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout must not be negative")
	}
	if engine.ToolTimeout == 0 {
		engine.ToolTimeout = DefaultToolTimeout
	}
	return nil
}

func validateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig.RetryCount < 0 {
		return fmt.Errorf("retry_count must not be negative")
	}
	if httpConfig.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if (httpConfig.Proxy.Host == "") != (httpConfig.Proxy.Port == "") {
		return fmt.Errorf("proxy host and port must be set together")
	}
	return nil
}
