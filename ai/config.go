// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for the language model services.
type Config struct {
	// Host is the base URL of the OpenAI-compatible API.
	// Example: "https://api.openai.com/v1", "http://localhost:11434/v1"
	Host string

	// Token is the API key. Local servers usually accept any value.
	Token string

	// AnswerModel is the model that answers legal questions.
	// Example: "gpt-4o-mini"
	AnswerModel string

	// ExtractionModel is the model that extracts law and article references.
	// Example: "gpt-4o-2024-08-06", "qwen2.5:7b"
	ExtractionModel string

	// MaxAttempts bounds the retries on malformed extraction responses.
	// Default: 3
	MaxAttempts int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the API host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithToken sets the API key.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithAnswerModel sets the answering model identifier.
func WithAnswerModel(model string) ConfigOption {
	return func(c *Config) {
		c.AnswerModel = model
	}
}

// WithExtractionModel sets the reference extraction model identifier.
func WithExtractionModel(model string) ConfigOption {
	return func(c *Config) {
		c.ExtractionModel = model
	}
}

// WithMaxAttempts sets the number of extraction attempts.
func WithMaxAttempts(n int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// DefaultConfig returns a Config for the hosted OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		Host:            "https://api.openai.com/v1",
		AnswerModel:     "gpt-4o-mini",
		ExtractionModel: "gpt-4o-2024-08-06",
		MaxAttempts:     3,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434"),
//	    WithExtractionModel("qwen2.5:7b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the host if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Host = strings.TrimSpace(c.Host)
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.AnswerModel == "" {
		return errors.New("ai config: AnswerModel is required")
	}
	if c.ExtractionModel == "" {
		return errors.New("ai config: ExtractionModel is required")
	}
	if c.MaxAttempts < 1 {
		return errors.New("ai config: MaxAttempts must be at least 1")
	}
	return nil
}
