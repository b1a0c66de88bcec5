// Package config loads process configuration from config.yaml, the environment and an optional
// .env file.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RichardKnop/ragchat"
	"github.com/RichardKnop/ragchat/adapter/factory"
	"github.com/RichardKnop/ragchat/pkg/logger"
)

type Config struct {
	HTTP       HTTP           `mapstructure:"http"`
	Log        logger.Config  `mapstructure:"log"`
	Backends   factory.Config `mapstructure:"backends"`
	Pipeline   Pipeline       `mapstructure:"pipeline"`
	Defaults   Defaults       `mapstructure:"defaults"`
	Models     []Model        `mapstructure:"models"`
	Retrievers []Retriever    `mapstructure:"retrievers"`
}

type HTTP struct {
	Addr              string        `mapstructure:"addr"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	AnswerTimeout     time.Duration `mapstructure:"answer_timeout"`
}

type Pipeline struct {
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// TokenEncoding is the tiktoken encoding used to budget prompts.
	TokenEncoding string `mapstructure:"token_encoding"`
}

// Defaults fill in generation and retrieval parameters a selection leaves blank.
type Defaults struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TopK        int     `mapstructure:"top_k"`
}

type Model struct {
	Label         string   `mapstructure:"label"`
	Provider      string   `mapstructure:"provider"`
	ModelID       string   `mapstructure:"model_id"`
	MaxTokens     int      `mapstructure:"max_tokens"`
	Temperature   *float64 `mapstructure:"temperature"`
	ContextWindow int      `mapstructure:"context_window"`
}

type Retriever struct {
	Label   string            `mapstructure:"label"`
	Kind    string            `mapstructure:"kind"`
	Store   string            `mapstructure:"store"`
	IndexID string            `mapstructure:"index_id"`
	Region  string            `mapstructure:"region"`
	TopK    int               `mapstructure:"top_k"`
	Filters map[string]string `mapstructure:"filters"`
}

// Secrets are usually provided through the environment rather than config.yaml.
var envBindings = map[string]string{
	"backends.openai.api_key":   "OPENAI_API_KEY",
	"backends.gemini.api_key":   "GEMINI_API_KEY",
	"backends.pinecone.api_key": "PINECONE_API_KEY",
	"backends.redis.password":   "REDIS_PASSWORD",
	"backends.postgres.url":     "DATABASE_URL",
	"backends.aws.region":       "AWS_REGION",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":9020")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.read_header_timeout", 2*time.Second)
	v.SetDefault("http.write_timeout", 120*time.Second)
	v.SetDefault("http.idle_timeout", 30*time.Second)
	v.SetDefault("http.answer_timeout", 90*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatJSON)
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("pipeline.call_timeout", 30*time.Second)
	v.SetDefault("pipeline.token_encoding", "cl100k_base")
	v.SetDefault("defaults.max_tokens", 1024)
	v.SetDefault("defaults.temperature", 0.7)
	v.SetDefault("defaults.top_k", 3)
	v.SetDefault("backends.embedder.name", factory.EmbedderBedrock)
}

// Load reads config.yaml from path, CONFIG_FILE, the working directory or ./config, in that
// order. Any key can be overridden from the environment with dots replaced by underscores.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path = cmp.Or(path, os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// ModelSelections returns the configured models with defaults applied.
func (c Config) ModelSelections() []ragchat.ModelSelection {
	selections := make([]ragchat.ModelSelection, 0, len(c.Models))
	for _, m := range c.Models {
		temperature := c.Defaults.Temperature
		if m.Temperature != nil {
			temperature = *m.Temperature
		}
		selections = append(selections, ragchat.ModelSelection{
			Label:    m.Label,
			Provider: ragchat.Provider(m.Provider),
			ModelID:  m.ModelID,
			Params: ragchat.GenerationParams{
				MaxTokens:   cmp.Or(m.MaxTokens, c.Defaults.MaxTokens),
				Temperature: temperature,
			},
			ContextWindow: m.ContextWindow,
		})
	}
	return selections
}

// RetrieverSelections returns the configured retrievers with defaults applied.
func (c Config) RetrieverSelections() []ragchat.RetrieverSelection {
	selections := make([]ragchat.RetrieverSelection, 0, len(c.Retrievers))
	for _, r := range c.Retrievers {
		selections = append(selections, ragchat.RetrieverSelection{
			Label:   r.Label,
			Kind:    ragchat.BackendKind(r.Kind),
			Store:   ragchat.VectorStore(r.Store),
			IndexID: r.IndexID,
			Region:  r.Region,
			TopK:    cmp.Or(r.TopK, c.Defaults.TopK),
			Filters: ragchat.Filters(r.Filters),
		})
	}
	return selections
}

// Registry validates the configured selections and builds the label registry.
func (c Config) Registry() (*ragchat.Registry, error) {
	return ragchat.NewRegistry(c.ModelSelections(), c.RetrieverSelections())
}
