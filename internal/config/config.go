// Package config loads the YAML configuration of the report pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/survey-report/internal/ai"
	"github.com/thywilljoshua/survey-report/internal/conversation"
	"github.com/thywilljoshua/survey-report/internal/layout"
	"github.com/thywilljoshua/survey-report/internal/parse"
	"github.com/thywilljoshua/survey-report/internal/plan"
	"github.com/thywilljoshua/survey-report/internal/render"
	"github.com/thywilljoshua/survey-report/internal/retry"
)

// EnabledEnv switches generation off when set to a false value.
const EnabledEnv = "REPORTGEN_GENERATION_ENABLED"

type Config struct {
	Generator    Generator    `yaml:"generator"`
	Conversation Conversation `yaml:"conversation"`
	Retry        Retry        `yaml:"retry"`
	Policy       Policy       `yaml:"policy"`
	Layout       Layout       `yaml:"layout"`
	Templates    Templates    `yaml:"templates"`
	Output       Output       `yaml:"output"`
	Logging      Logging      `yaml:"logging"`
}

type Generator struct {
	// Provider is perplexity, openai, deepseek, gemini or disabled.
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv      string        `yaml:"api_key_env"`
	Temperature    float64       `yaml:"temperature"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type Conversation struct {
	CharsPerToken float64 `yaml:"chars_per_token"`
	UpperTokens   int     `yaml:"upper_tokens"`
	LowerTokens   int     `yaml:"lower_tokens"`
	KeepPrefix    int     `yaml:"keep_prefix"`
}

type Retry struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	TransientBase time.Duration `yaml:"transient_base"`
	RateLimitBase time.Duration `yaml:"rate_limit_base"`
	Jitter        float64       `yaml:"jitter"`
}

type Policy struct {
	CharsPerPage          int              `yaml:"chars_per_page"`
	Premium               parse.Thresholds `yaml:"premium"`
	Basic                 parse.Thresholds `yaml:"basic"`
	LargeRequestChars     int              `yaml:"large_request_chars"`
	MinLargeResponseChars int              `yaml:"min_large_response_chars"`
	MaxOutputTokens       int              `yaml:"max_output_tokens"`
	SectionPause          time.Duration    `yaml:"section_pause"`
}

type Layout struct {
	Fonts    render.FontFiles `yaml:"fonts"`
	Geometry layout.Geometry  `yaml:"geometry"`
}

type Templates struct {
	Dir string `yaml:"dir"`
}

type Output struct {
	Dir     string `yaml:"dir"`
	WorkDir string `yaml:"work_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration.
func Default() Config {
	c := defaults()
	c.applyDerived()
	return c
}

// Load reads path over the defaults, so keys absent from the file keep
// their default and keys set to zero stay zero. An empty path yields
// Default().
func Load(path string) (Config, error) {
	c := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	c.applyDerived()
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func defaults() Config {
	db := conversation.DefaultBudget()
	dr := retry.Default()
	dp := conversation.DefaultPolicy()
	return Config{
		Generator: Generator{
			Provider:       "perplexity",
			Temperature:    dp.Temperature,
			RequestTimeout: dp.RequestTimeout,
		},
		Conversation: Conversation{
			CharsPerToken: db.CharsPerToken,
			UpperTokens:   db.Upper,
			LowerTokens:   db.Lower,
			KeepPrefix:    3,
		},
		Retry: Retry{
			MaxAttempts:   dr.MaxAttempts,
			TransientBase: dr.TransientBase,
			RateLimitBase: dr.RateLimitBase,
			Jitter:        dr.Jitter,
		},
		Policy: Policy{
			CharsPerPage:          plan.DefaultCharsPerPage,
			Premium:               parse.Thresholds{MinTotal: 1000, MinChunk: 300},
			Basic:                 parse.Thresholds{MinTotal: 300, MinChunk: 100},
			LargeRequestChars:     dp.LargeRequestChars,
			MinLargeResponseChars: dp.MinLargeResponseChars,
			MaxOutputTokens:       dp.MaxOutputTokens,
			SectionPause:          2 * time.Second,
		},
		Layout:    Layout{Geometry: layout.A4()},
		Templates: Templates{Dir: "templates"},
		Output:    Output{Dir: "reports"},
		Logging:   Logging{Level: "info"},
	}
}

// applyDerived fills the settings that depend on the chosen provider.
func (c *Config) applyDerived() {
	g := &c.Generator
	if g.Provider == "" {
		g.Provider = "perplexity"
	}
	if g.Model == "" {
		switch strings.ToLower(g.Provider) {
		case "gemini":
			g.Model = "gemini-2.5-flash"
		case "openai":
			g.Model = "gpt-4o-mini"
		default:
			g.Model = "sonar-pro"
		}
	}
	if g.APIKeyEnv == "" {
		g.APIKeyEnv = strings.ToUpper(g.Provider) + "_API_KEY"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnabledEnv); ok {
		if on, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil && !on {
			c.Generator.Provider = "disabled"
		}
	}
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	var errs []error
	if c.Conversation.CharsPerToken <= 0 {
		errs = append(errs, errors.New("conversation.chars_per_token must be positive"))
	}
	if c.Conversation.LowerTokens >= c.Conversation.UpperTokens {
		errs = append(errs, errors.New("conversation.lower_tokens must be below upper_tokens"))
	}
	if c.Conversation.KeepPrefix < 1 {
		errs = append(errs, errors.New("conversation.keep_prefix must be at least 1"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter >= 1 {
		errs = append(errs, errors.New("retry.jitter must be in [0, 1)"))
	}
	if c.Policy.CharsPerPage <= 0 {
		errs = append(errs, errors.New("policy.chars_per_page must be positive"))
	}
	for name, th := range map[string]parse.Thresholds{"premium": c.Policy.Premium, "basic": c.Policy.Basic} {
		if th.MinTotal < 0 || th.MinChunk < 0 || th.MinChunk > th.MinTotal {
			errs = append(errs, fmt.Errorf("policy.%s thresholds: min_chunk must be within [0, min_total]", name))
		}
	}
	if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
		errs = append(errs, errors.New("generator.temperature must be in [0, 2]"))
	}
	if c.Generator.RequestTimeout <= 0 {
		errs = append(errs, errors.New("generator.request_timeout must be positive"))
	}
	if c.Policy.MaxOutputTokens <= 0 {
		errs = append(errs, errors.New("policy.max_output_tokens must be positive"))
	}
	if c.Policy.SectionPause < 0 {
		errs = append(errs, errors.New("policy.section_pause must not be negative"))
	}
	if c.Layout.Fonts.Regular == "" && (c.Layout.Fonts.Bold != "" || c.Layout.Fonts.Italic != "") {
		errs = append(errs, errors.New("layout.fonts: bold or italic set without regular"))
	}
	return errors.Join(errs...)
}

// APIKey reads the key from the configured environment variable.
func (c Config) APIKey() string { return os.Getenv(c.Generator.APIKeyEnv) }

func (c Config) AISettings() ai.Settings {
	return ai.Settings{
		Provider: c.Generator.Provider,
		Model:    c.Generator.Model,
		APIKey:   c.APIKey(),
		BaseURL:  c.Generator.BaseURL,
		Timeout:  c.Generator.RequestTimeout,
	}
}

func (c Config) Budget() conversation.Budget {
	return conversation.Budget{
		CharsPerToken: c.Conversation.CharsPerToken,
		Upper:         c.Conversation.UpperTokens,
		Lower:         c.Conversation.LowerTokens,
	}
}

func (c Config) RetryPolicy() retry.Policy {
	p := retry.Default()
	p.MaxAttempts = c.Retry.MaxAttempts
	p.TransientBase = c.Retry.TransientBase
	p.RateLimitBase = c.Retry.RateLimitBase
	p.Jitter = c.Retry.Jitter
	return p
}

// ConversationPolicy returns the request policy for a report variant. Only
// premium page replies are held to the large-response minimum.
func (c Config) ConversationPolicy(v plan.Variant) conversation.Policy {
	p := conversation.Policy{
		Temperature:           c.Generator.Temperature,
		MaxOutputTokens:       c.Policy.MaxOutputTokens,
		LargeRequestChars:     c.Policy.LargeRequestChars,
		MinLargeResponseChars: c.Policy.MinLargeResponseChars,
		RequestTimeout:        c.Generator.RequestTimeout,
	}
	if v != plan.Premium {
		p.LargeRequestChars = 0
	}
	return p
}

func (c Config) Thresholds(v plan.Variant) parse.Thresholds {
	if v == plan.Premium {
		return c.Policy.Premium
	}
	return c.Policy.Basic
}
