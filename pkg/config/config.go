package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Redis    RedisConfig    `yaml:"redis"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Sampling SamplingConfig `yaml:"sampling"`
	Store    StoreConfig    `yaml:"store"`
}

// SerialConfig contains the converter MCU serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// RedisConfig contains the Redis connection settings used for the
// persistent store and the Redis notifier.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	StateKey string `yaml:"state_key"`
	Channel  string `yaml:"channel"`
}

// MQTTConfig contains the MQTT notifier settings.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// SamplingConfig contains the acquisition cadence and conversion
// timing parameters.
type SamplingConfig struct {
	BatteryInterval   time.Duration `yaml:"battery_interval"`
	LightInterval     time.Duration `yaml:"light_interval"`
	MonitorInterval   time.Duration `yaml:"monitor_interval"`
	ConversionTimeout time.Duration `yaml:"conversion_timeout"`
	LightSettleDelay  time.Duration `yaml:"light_settle_delay"`
}

// StoreConfig selects where thresholds and calibration persist.
type StoreConfig struct {
	// Backend is "file" or "redis".
	Backend string `yaml:"backend"`
	// Path is the store file location for the file backend.
	Path string `yaml:"path"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
			Baud: 115200,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			StateKey: "sensorcore",
			Channel:  "sensorcore:notifications",
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "sensord",
			TopicPrefix: "sensorcore",
		},
		Sampling: SamplingConfig{
			BatteryInterval:   8 * time.Second,
			LightInterval:     8 * time.Second,
			MonitorInterval:   10 * time.Second,
			ConversionTimeout: 500 * time.Millisecond,
			LightSettleDelay:  10 * time.Millisecond,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    "sensorcore-store.yaml",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values
// if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
	if c.Redis.StateKey == "" {
		c.Redis.StateKey = def.Redis.StateKey
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = def.Redis.Channel
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}

	if c.Sampling.BatteryInterval == 0 {
		c.Sampling.BatteryInterval = def.Sampling.BatteryInterval
	}
	if c.Sampling.LightInterval == 0 {
		c.Sampling.LightInterval = def.Sampling.LightInterval
	}
	if c.Sampling.MonitorInterval == 0 {
		c.Sampling.MonitorInterval = def.Sampling.MonitorInterval
	}
	if c.Sampling.ConversionTimeout == 0 {
		c.Sampling.ConversionTimeout = def.Sampling.ConversionTimeout
	}
	if c.Sampling.LightSettleDelay == 0 {
		c.Sampling.LightSettleDelay = def.Sampling.LightSettleDelay
	}

	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
}
