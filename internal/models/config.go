package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DatasetRelPath is where the dataset lives relative to the program directory.
const DatasetRelPath = "src/lib/configs/experiment_orders.json"

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"` // "" / "local" or "s3"
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds a libpq style connection string for pgx.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type Config struct {
	Dataset          string `mapstructure:"dataset"`
	FirstOrderSuffix string `mapstructure:"first_order_suffix"`
	Strict           bool   `mapstructure:"strict"`
	LogLevel         string `mapstructure:"log_level"`

	ExportFormat string             `mapstructure:"export_format"` // csv, json, parquet or empty
	OutputPath   string             `mapstructure:"output_path"`
	OutputFolder string             `mapstructure:"output_folder"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
	ShowProgress bool               `mapstructure:"show_progress"`

	KafkaEnabled    bool          `mapstructure:"kafka_enabled"`
	KafkaBrokerList []string      `mapstructure:"kafka_broker_list"`
	KafkaTopic      string        `mapstructure:"kafka_topic"`
	PublishTimeout  time.Duration `mapstructure:"publish_timeout"`

	RecordRuns bool           `mapstructure:"record_runs"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// DefaultDatasetPath resolves DatasetRelPath against the directory of the running executable.
func DefaultDatasetPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DatasetRelPath
	}
	return filepath.Join(filepath.Dir(exe), DatasetRelPath)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset", DefaultDatasetPath())
	v.SetDefault("first_order_suffix", DefaultFirstOrderSuffix)
	v.SetDefault("log_level", "info")
	v.SetDefault("output_path", ".")
	v.SetDefault("output_folder", "expcheck")
	v.SetDefault("show_progress", true)
	v.SetDefault("kafka_broker_list", []string{"localhost:9092"})
	v.SetDefault("kafka_topic", "experiment_validation")
	v.SetDefault("publish_timeout", "10s")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
}

// LoadConfig initializes and reads the configuration using Viper.
// An explicit cfgFile must exist; the default $HOME/.expcheck.yaml is optional.
func LoadConfig(cfgFile string) (*Config, error) {
	return LoadConfigFrom(viper.GetViper(), cfgFile)
}

func LoadConfigFrom(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".expcheck")
	}

	v.SetEnvPrefix("EXPCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // Read in environment variables that match

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
