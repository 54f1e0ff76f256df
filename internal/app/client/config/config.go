package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".fibertrace"
	defaultSyncInterval  = 30
	defaultProbeInterval = 15
)

type Config struct {
	Env            string `mapstructure:"app_env"`
	ServerAddress  string `mapstructure:"server_address"`
	LogLevel       string `mapstructure:"log_level"`
	ConfigDir      string `mapstructure:"config_dir"`
	DataPath       string `mapstructure:"data_path"`
	DeviceID       string `mapstructure:"device_id"`
	Technician     string `mapstructure:"technician"`
	SyncInterval   int    `mapstructure:"sync_interval_seconds"`
	ProbeInterval  int    `mapstructure:"probe_interval_seconds"`
	TechnicianAuth string `mapstructure:"technician_token"`
}

// MustLoad loads client configuration from the environment and the
// optional .env file, creating the config directory on first run.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("failed to load .env file: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SYNC_INTERVAL_SECONDS", defaultSyncInterval)
	viper.SetDefault("PROBE_INTERVAL_SECONDS", defaultProbeInterval)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("failed to create config directory: %v\n", err)
	}

	dataPath := filepath.Join(configDir, "fibertrace.db")

	config := &Config{
		Env:            viper.GetString("APP_ENV"),
		ServerAddress:  viper.GetString("SERVER_ADDRESS"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		ConfigDir:      configDir,
		DataPath:       dataPath,
		DeviceID:       loadDeviceID(configDir),
		Technician:     viper.GetString("TECHNICIAN"),
		SyncInterval:   viper.GetInt("SYNC_INTERVAL_SECONDS"),
		ProbeInterval:  viper.GetInt("PROBE_INTERVAL_SECONDS"),
		TechnicianAuth: viper.GetString("TECHNICIAN_TOKEN"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return config
}

// loadDeviceID reads the stable installation identifier, generating one
// on first run. Every device keeps its own so the server can tell
// uploads from different field units apart.
func loadDeviceID(configDir string) string {
	path := filepath.Join(configDir, "device_id")
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		fmt.Printf("failed to persist device id: %v\n", err)
	}
	return id
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds must be positive")
	}
	return nil
}

// IsProd reports whether the environment is prod.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsDev reports whether the environment is dev.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// IsLocal reports whether the environment is local.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
