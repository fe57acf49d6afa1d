// Package config loads executor configuration from an optional yaml file,
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowbaker/hubspot-executor/internal/scheduler"
	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/integrations/hubspot"
	"github.com/flowbaker/hubspot-executor/pkg/polling"
	"github.com/flowbaker/hubspot-executor/pkg/storage/watermark"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "HUBSPOT_EXECUTOR"
	ConfigFileName = "executor_config"

	TaskBackendLog   = "log"
	TaskBackendRedis = "redis"
)

type Config struct {
	HTTPAddress string `mapstructure:"http_address"`
	WorkspaceID string `mapstructure:"workspace_id"`

	// APIKey and APISigningPublicKey guard the workspace routes. Either,
	// both or neither may be set.
	APIKey              string `mapstructure:"api_key"`
	APISigningPublicKey string `mapstructure:"api_signing_public_key"`

	HubSpot     HubSpotConfig       `mapstructure:"hubspot"`
	Polling     PollingConfig       `mapstructure:"polling"`
	Watermark   WatermarkConfig     `mapstructure:"watermark"`
	Tasks       TasksConfig         `mapstructure:"tasks"`
	Credentials []CredentialConfig  `mapstructure:"credentials"`
	Triggers    []scheduler.Trigger `mapstructure:"triggers"`
}

type HubSpotConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	RetryMax       int    `mapstructure:"retry_max"`
	RetryWaitMinMS int64  `mapstructure:"retry_wait_min_ms"`
	RetryWaitMaxMS int64  `mapstructure:"retry_wait_max_ms"`

	// AccessToken, when set, is registered as the credential
	// DefaultCredentialID.
	AccessToken string `mapstructure:"access_token"`
}

type PollingConfig struct {
	TestPageSize      int    `mapstructure:"test_page_size"`
	LivePageSize      int    `mapstructure:"live_page_size"`
	HistoryBatchSize  int    `mapstructure:"history_batch_size"`
	MaxHistoryWorkers int    `mapstructure:"max_history_workers"`
	Schedule          string `mapstructure:"schedule"`
}

type WatermarkConfig struct {
	Backend   string `mapstructure:"backend"`
	URI       string `mapstructure:"uri"`
	Namespace string `mapstructure:"namespace"`
	Database  string `mapstructure:"database"`
}

type TasksConfig struct {
	Backend  string `mapstructure:"backend"`
	RedisURI string `mapstructure:"redis_uri"`
	Stream   string `mapstructure:"stream"`
}

type CredentialConfig struct {
	ID              string                 `mapstructure:"id"`
	Name            string                 `mapstructure:"name"`
	WorkspaceID     string                 `mapstructure:"workspace_id"`
	IntegrationType domain.IntegrationType `mapstructure:"integration_type"`
	Payload         map[string]any         `mapstructure:"payload"`
}

const DefaultCredentialID = "hubspot-default"

type LoadOptions struct {
	// ConfigFile overrides the search paths when set.
	ConfigFile string
}

// Load reads the configuration. A missing config file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names for the settings operators set most often.
	envMappings := map[string]string{
		"http_address":           "HTTP_ADDRESS",
		"workspace_id":           "WORKSPACE_ID",
		"api_key":                "API_KEY",
		"api_signing_public_key": "API_SIGNING_PUBLIC_KEY",
		"hubspot.access_token":   "HUBSPOT_ACCESS_TOKEN",
	}

	for configKey, envVar := range envMappings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(configKey, ".", "_"))
		if err := v.BindEnv(configKey, prefixed, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.hubspot-executor")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.applyTriggerDefaults()

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	log.Debug().
		Str("http_address", config.HTTPAddress).
		Str("watermark_backend", config.Watermark.Backend).
		Str("tasks_backend", config.Tasks.Backend).
		Int("triggers", len(config.Triggers)).
		Msg("Config loaded")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_address", ":8081")
	v.SetDefault("workspace_id", "default")
	v.SetDefault("api_key", "")
	v.SetDefault("api_signing_public_key", "")

	v.SetDefault("hubspot.base_url", hubspot.DefaultBaseURL)
	v.SetDefault("hubspot.retry_max", 3)
	v.SetDefault("hubspot.retry_wait_min_ms", 500)
	v.SetDefault("hubspot.retry_wait_max_ms", 5000)
	v.SetDefault("hubspot.access_token", "")

	v.SetDefault("polling.test_page_size", polling.DefaultTestPageSize)
	v.SetDefault("polling.live_page_size", polling.DefaultLivePageSize)
	v.SetDefault("polling.history_batch_size", polling.DefaultHistoryBatchSize)
	v.SetDefault("polling.max_history_workers", polling.DefaultMaxHistoryWorkers)
	v.SetDefault("polling.schedule", scheduler.DefaultSchedule)

	v.SetDefault("watermark.backend", string(watermark.DriverMemory))
	v.SetDefault("watermark.uri", "")
	v.SetDefault("watermark.namespace", "")
	v.SetDefault("watermark.database", "")

	v.SetDefault("tasks.backend", TaskBackendLog)
	v.SetDefault("tasks.redis_uri", "")
	v.SetDefault("tasks.stream", "")
}

// applyTriggerDefaults fills fields every configured trigger shares.
func (c *Config) applyTriggerDefaults() {
	for i := range c.Triggers {
		trigger := &c.Triggers[i]

		if trigger.IntegrationType == "" {
			trigger.IntegrationType = domain.IntegrationType_HubSpot
		}

		if trigger.WorkspaceID == "" {
			trigger.WorkspaceID = c.WorkspaceID
		}

		if trigger.Schedule == "" {
			trigger.Schedule = c.Polling.Schedule
		}

		if trigger.Settings == nil {
			trigger.Settings = map[string]any{}
		}

		if _, ok := trigger.Settings["credential_id"]; !ok && len(trigger.Credential) == 0 && c.HubSpot.AccessToken != "" {
			trigger.Settings["credential_id"] = DefaultCredentialID
		}
	}
}

func validateConfig(config *Config) error {
	var problems []string

	if config.HTTPAddress == "" {
		problems = append(problems, "http_address is required")
	}

	if config.Polling.HistoryBatchSize < 1 || config.Polling.HistoryBatchSize > polling.DefaultHistoryBatchSize {
		problems = append(problems, fmt.Sprintf("polling.history_batch_size must be between 1 and %d", polling.DefaultHistoryBatchSize))
	}

	if config.Polling.TestPageSize < 1 || config.Polling.TestPageSize > hubspot.MaxSearchLimit {
		problems = append(problems, fmt.Sprintf("polling.test_page_size must be between 1 and %d", hubspot.MaxSearchLimit))
	}

	if config.Polling.LivePageSize < 1 || config.Polling.LivePageSize > hubspot.MaxSearchLimit {
		problems = append(problems, fmt.Sprintf("polling.live_page_size must be between 1 and %d", hubspot.MaxSearchLimit))
	}

	if config.Polling.MaxHistoryWorkers < 1 {
		problems = append(problems, "polling.max_history_workers must be positive")
	}

	switch watermark.Driver(config.Watermark.Backend) {
	case watermark.DriverMemory:
	case watermark.DriverRedis, watermark.DriverPostgres, watermark.DriverMongo:
		if config.Watermark.URI == "" {
			problems = append(problems, fmt.Sprintf("watermark.uri is required for the %s backend", config.Watermark.Backend))
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown watermark.backend %q", config.Watermark.Backend))
	}

	switch config.Tasks.Backend {
	case TaskBackendLog:
	case TaskBackendRedis:
		if config.Tasks.RedisURI == "" {
			problems = append(problems, "tasks.redis_uri is required for the redis backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown tasks.backend %q", config.Tasks.Backend))
	}

	credentialIDs := map[string]bool{}
	for _, credential := range config.Credentials {
		if credential.ID == "" {
			problems = append(problems, "every credential needs an id")
			continue
		}

		if credentialIDs[credential.ID] {
			problems = append(problems, fmt.Sprintf("duplicate credential id %q", credential.ID))
		}
		credentialIDs[credential.ID] = true
	}

	triggerIDs := map[string]bool{}
	for _, trigger := range config.Triggers {
		if trigger.ID == "" || trigger.EventType == "" {
			problems = append(problems, "every trigger needs an id and an event_type")
			continue
		}

		if triggerIDs[trigger.ID] {
			problems = append(problems, fmt.Sprintf("duplicate trigger id %q", trigger.ID))
		}
		triggerIDs[trigger.ID] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}

// DomainCredentials returns the configured credentials plus the one derived
// from hubspot.access_token.
func (c *Config) DomainCredentials() []domain.Credential {
	credentials := make([]domain.Credential, 0, len(c.Credentials)+1)

	for _, credential := range c.Credentials {
		integrationType := credential.IntegrationType
		if integrationType == "" {
			integrationType = domain.IntegrationType_HubSpot
		}

		credentials = append(credentials, domain.Credential{
			ID:               credential.ID,
			Name:             credential.Name,
			WorkspaceID:      credential.WorkspaceID,
			IntegrationType:  integrationType,
			DecryptedPayload: credential.Payload,
		})
	}

	if c.HubSpot.AccessToken != "" {
		credentials = append(credentials, domain.Credential{
			ID:               DefaultCredentialID,
			Name:             "HubSpot access token",
			IntegrationType:  domain.IntegrationType_HubSpot,
			DecryptedPayload: map[string]any{"access_token": c.HubSpot.AccessToken},
		})
	}

	return credentials
}

func (c *Config) HubSpotClientConfig() domain.HubSpotClientConfig {
	return domain.HubSpotClientConfig{
		BaseURL:      c.HubSpot.BaseURL,
		RetryMax:     c.HubSpot.RetryMax,
		RetryWaitMin: c.HubSpot.RetryWaitMinMS,
		RetryWaitMax: c.HubSpot.RetryWaitMaxMS,
	}
}

func (c *Config) PollingConfig() domain.PollingConfig {
	return domain.PollingConfig{
		TestPageSize:      c.Polling.TestPageSize,
		LivePageSize:      c.Polling.LivePageSize,
		HistoryBatchSize:  c.Polling.HistoryBatchSize,
		MaxHistoryWorkers: c.Polling.MaxHistoryWorkers,
	}
}

func (c *Config) WatermarkOptions() watermark.Options {
	return watermark.Options{
		Driver:    watermark.Driver(c.Watermark.Backend),
		URI:       c.Watermark.URI,
		Namespace: c.Watermark.Namespace,
		Database:  c.Watermark.Database,
	}
}

// FindTrigger looks a configured trigger up by id.
func (c *Config) FindTrigger(id string) (scheduler.Trigger, bool) {
	for _, trigger := range c.Triggers {
		if trigger.ID == id {
			return trigger, true
		}
	}

	return scheduler.Trigger{}, false
}
