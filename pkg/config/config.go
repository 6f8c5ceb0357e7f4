// Package config resolves settings and credentials for llm911.
//
// Precedence, lowest to highest: hardcoded defaults, optional YAML config
// file, dotenv file (data/.env), process environment. The dotenv file only
// fills values the environment does not already provide, matching the usual
// "env wins over .env" behavior.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvFile is the dotenv file holding the three API keys in local
// development setups.
const DefaultEnvFile = "data/.env"

type Config struct {
	DataDir string        `koanf:"data_dir"`
	Log     LogConfig     `koanf:"log"`
	LLM     LLMConfig     `koanf:"llm"`
	Review  ReviewConfig  `koanf:"review"`
	Status  StatusConfig  `koanf:"status"`
	Sandbox SandboxConfig `koanf:"sandbox"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, console
}

type LLMConfig struct {
	Provider        string `koanf:"provider"` // claude, openai
	Model           string `koanf:"model"`
	AnthropicAPIKey string `koanf:"anthropic_api_key"`
	OpenAIAPIKey    string `koanf:"openai_api_key"`
}

type ReviewConfig struct {
	LatencyThreshold float64 `koanf:"latency_threshold"`
	TimeoutPattern   string  `koanf:"timeout_pattern"`
}

type StatusConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	PageURL string `koanf:"page_url"`
}

type SandboxConfig struct {
	APIKey   string `koanf:"api_key"`
	BaseURL  string `koanf:"base_url"`
	Repo     string `koanf:"repo"`
	RepoPath string `koanf:"repo_path"`
}

// APIKey returns the credential matching the configured provider.
func (c LLMConfig) APIKey() string {
	if strings.EqualFold(c.Provider, "openai") {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

// Load builds the configuration. configPath may be empty (no YAML file);
// envFile may be empty to use DefaultEnvFile. A missing dotenv file is not
// an error.
func Load(configPath, envFile string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("data_dir", "data")
	k.Set("log.level", "info")
	k.Set("log.format", "console")
	k.Set("llm.provider", "claude")
	k.Set("review.latency_threshold", 10.0)
	k.Set("review.timeout_pattern", "timeout=")
	k.Set("status.base_url", "https://api.browser-use.com/api/v1")
	k.Set("status.page_url", "https://status.anthropic.com/")
	k.Set("sandbox.base_url", "https://app.daytona.io/api")
	k.Set("sandbox.repo", "https://github.com/arun3676/LLM-911.git")
	k.Set("sandbox.repo_path", "llm-911")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := k.Load(file.Provider(envFile), dotenv.ParserEnv("", ".", mapEnvKey)); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", mapEnvKey), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mapEnvKey translates environment-style keys to config paths. The three
// provider credentials keep their conventional names; everything else must
// carry the LLM911_ prefix. Only the first underscore becomes a section
// separator so compound field names survive:
//
//	LLM911_LLM_MODEL               -> llm.model
//	LLM911_REVIEW_LATENCY_THRESHOLD -> review.latency_threshold
//	LLM911_SANDBOX_REPO_PATH        -> sandbox.repo_path
//
// Unknown keys are dropped by returning "".
func mapEnvKey(s string) string {
	switch s {
	case "ANTHROPIC_API_KEY":
		return "llm.anthropic_api_key"
	case "OPENAI_API_KEY":
		return "llm.openai_api_key"
	case "BROWSER_USE_API_KEY":
		return "status.api_key"
	case "DAYTONA_API_KEY":
		return "sandbox.api_key"
	case "LLM_PROVIDER":
		return "llm.provider"
	}
	rest, ok := strings.CutPrefix(s, "LLM911_")
	if !ok {
		return ""
	}
	if rest == "DATA_DIR" {
		return "data_dir"
	}
	return strings.Replace(strings.ToLower(rest), "_", ".", 1)
}
