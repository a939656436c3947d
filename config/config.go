// Package config loads the configuration of the transfer CLI from a YAML file and environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/smartcontractkit/datasync-transfer-framework/operations"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
	"github.com/smartcontractkit/datasync-transfer-framework/provider"
	"github.com/smartcontractkit/datasync-transfer-framework/statestore"
	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

// AWSConfig selects the region and the credentials of each account.
type AWSConfig struct {
	Region             string `mapstructure:"region" yaml:"region"`                           // The region of the DataSync resources
	Partition          string `mapstructure:"partition" yaml:"partition,omitempty"`           // The ARN partition, defaults to "aws"
	InitiatorProfile   string `mapstructure:"initiator_profile" yaml:"initiator_profile"`     // The shared config profile of the initiating account
	SourceProfile      string `mapstructure:"source_profile" yaml:"source_profile"`           // The profile of the source bucket owner
	DestinationProfile string `mapstructure:"destination_profile" yaml:"destination_profile"` // The profile of the destination bucket owner
}

// ResourcesConfig names the resources shared by every transfer.
type ResourcesConfig struct {
	RoleName           string `mapstructure:"role_name" yaml:"role_name"`                               // The DataSync execution role
	LogGroupName       string `mapstructure:"log_group_name" yaml:"log_group_name"`                     // The CloudWatch log group of the tasks
	Principal          string `mapstructure:"principal" yaml:"principal,omitempty"`                     // Granted on foreign buckets, defaults to the caller
	SourcePattern      string `mapstructure:"source_pattern" yaml:"source_pattern,omitempty"`           // Buckets the role may read
	DestinationPattern string `mapstructure:"destination_pattern" yaml:"destination_pattern,omitempty"` // Buckets the role may write
}

// RetryConfig controls how lost creation races of shared resources are retried.
type RetryConfig struct {
	MaxAttempts uint          `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
}

// StateConfig selects where the resume tokens of the transfers are stored.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type StateConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`    // One of memory, file or postgres
	Path    string `mapstructure:"path" yaml:"path,omitempty"` // The state file of the file backend
	DSN     string `mapstructure:"dsn" yaml:"dsn,omitempty"`   // Secret: The connection string of the postgres backend
}

// LogConfig configures the runtime logger.
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`       // debug, info, warn or error
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // json or console
}

// TransferConfig describes one transfer of the batch.
type TransferConfig struct {
	Name              string `mapstructure:"name" yaml:"name"`
	Source            string `mapstructure:"source" yaml:"source"`
	Destination       string `mapstructure:"destination" yaml:"destination"`
	SourcePrefix      string `mapstructure:"source_prefix" yaml:"source_prefix,omitempty"`
	DestinationPrefix string `mapstructure:"destination_prefix" yaml:"destination_prefix,omitempty"`
	Initiator         string `mapstructure:"initiator" yaml:"initiator,omitempty"`
}

// Config wraps the entire configuration of the transfer CLI.
type Config struct {
	Initiator string           `mapstructure:"initiator" yaml:"initiator"` // The default initiating side, source or destination
	AWS       AWSConfig        `mapstructure:"aws" yaml:"aws"`
	Resources ResourcesConfig  `mapstructure:"resources" yaml:"resources"`
	Retry     RetryConfig      `mapstructure:"retry" yaml:"retry"`
	State     StateConfig      `mapstructure:"state" yaml:"state"`
	Log       LogConfig        `mapstructure:"log" yaml:"log"`
	Transfers []TransferConfig `mapstructure:"transfers" yaml:"transfers"`
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadFile loads the config from a file, ignoring environment variables.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("initiator", string(transfer.SideSource))
	v.SetDefault("aws.partition", "aws")
	v.SetDefault("resources.source_pattern", "*")
	v.SetDefault("resources.destination_pattern", "*")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay", 500*time.Millisecond)
	v.SetDefault("state.backend", string(statestore.BackendFile))
	v.SetDefault("state.path", ".datasync/state.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")

	return v
}

var (
	// envBindings maps config keys to the environment variables that can provide their value.
	//
	// The first name is the preferred one. The following names are the variables already set in
	// most AWS and database environments, used when the preferred one is not set.
	envBindings = map[string][]string{
		"initiator":                     {"DATASYNC_INITIATOR"},
		"aws.region":                    {"DATASYNC_AWS_REGION", "AWS_REGION", "AWS_DEFAULT_REGION"},
		"aws.partition":                 {"DATASYNC_AWS_PARTITION"},
		"aws.initiator_profile":         {"DATASYNC_AWS_INITIATOR_PROFILE", "AWS_PROFILE"},
		"aws.source_profile":            {"DATASYNC_AWS_SOURCE_PROFILE"},
		"aws.destination_profile":       {"DATASYNC_AWS_DESTINATION_PROFILE"},
		"resources.role_name":           {"DATASYNC_RESOURCES_ROLE_NAME"},
		"resources.log_group_name":      {"DATASYNC_RESOURCES_LOG_GROUP_NAME"},
		"resources.principal":           {"DATASYNC_RESOURCES_PRINCIPAL"},
		"resources.source_pattern":      {"DATASYNC_RESOURCES_SOURCE_PATTERN"},
		"resources.destination_pattern": {"DATASYNC_RESOURCES_DESTINATION_PATTERN"},
		"state.backend":                 {"DATASYNC_STATE_BACKEND"},
		"state.path":                    {"DATASYNC_STATE_PATH"},
		"state.dsn":                     {"DATASYNC_STATE_DSN", "DATABASE_URL"},
		"log.level":                     {"DATASYNC_LOG_LEVEL", "LOG_LEVEL"},
		"log.encoding":                  {"DATASYNC_LOG_ENCODING"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the env key to the start of the arguments
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the configuration required to run the transfers.
func (c *Config) Validate() error {
	var errs []error

	if c.AWS.Region == "" {
		errs = append(errs, errors.New("aws.region is required"))
	}
	if c.Resources.RoleName == "" {
		errs = append(errs, errors.New("resources.role_name is required"))
	}
	if c.Resources.LogGroupName == "" {
		errs = append(errs, errors.New("resources.log_group_name is required"))
	}
	if _, err := transfer.ParseSide(c.Initiator); err != nil {
		errs = append(errs, fmt.Errorf("initiator: %w", err))
	}
	switch c.StoreConfig().Backend {
	case statestore.BackendMemory:
	case statestore.BackendFile:
		if c.State.Path == "" {
			errs = append(errs, errors.New("state.path is required by the file backend"))
		}
	case statestore.BackendPostgres:
		if c.State.DSN == "" {
			errs = append(errs, errors.New("state.dsn is required by the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("state.backend: unknown backend %q", c.State.Backend))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := c.Specs(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Specs returns the transfers of the batch, in configuration order. Two transfers sharing a state
// key are rejected.
func (c *Config) Specs() ([]transfer.TransferSpec, error) {
	specs := make([]transfer.TransferSpec, 0, len(c.Transfers))
	seen := map[string]int{}
	for i, tc := range c.Transfers {
		initiator, err := transfer.ParseSide(tc.Initiator)
		if err != nil {
			return nil, fmt.Errorf("transfers[%d]: %w", i, err)
		}
		spec := transfer.TransferSpec{
			Name:              tc.Name,
			Source:            tc.Source,
			Destination:       tc.Destination,
			SourcePrefix:      tc.SourcePrefix,
			DestinationPrefix: tc.DestinationPrefix,
			Initiator:         initiator,
		}
		if err = spec.Validate(); err != nil {
			return nil, fmt.Errorf("transfers[%d]: %w", i, err)
		}

		key := statestore.Key(spec)
		if j, ok := seen[key]; ok {
			return nil, fmt.Errorf("transfers[%d]: same transfer as transfers[%d] (%s)", i, j, key)
		}
		seen[key] = i
		specs = append(specs, spec)
	}

	return specs, nil
}

// Filter keeps the transfers whose name is in names. An empty names keeps every transfer.
func (c *Config) Filter(names []string) error {
	if len(names) == 0 {
		return nil
	}

	var kept []TransferConfig
	for _, tc := range c.Transfers {
		if slices.Contains(names, tc.Name) {
			kept = append(kept, tc)
		}
	}
	for _, name := range names {
		if !slices.ContainsFunc(kept, func(tc TransferConfig) bool { return tc.Name == name }) {
			return fmt.Errorf("unknown transfer %q", name)
		}
	}
	c.Transfers = kept

	return nil
}

// SetupConfig returns the configuration of transfer.ResolveOptions.
func (c *Config) SetupConfig() transfer.SetupConfig {
	initiator, _ := transfer.ParseSide(c.Initiator)

	return transfer.SetupConfig{
		RoleName:           c.Resources.RoleName,
		LogGroupName:       c.Resources.LogGroupName,
		Principal:          c.Resources.Principal,
		SourcePattern:      c.Resources.SourcePattern,
		DestinationPattern: c.Resources.DestinationPattern,
		Initiator:          initiator,
		Retry: operations.RetryPolicy{
			MaxAttempts: c.Retry.MaxAttempts,
			Delay:       c.Retry.Delay,
		},
	}
}

// ClientConfig returns the configuration of the AWS clients.
func (c *Config) ClientConfig() provider.ClientConfig {
	return provider.ClientConfig{
		Region:             c.AWS.Region,
		Partition:          c.AWS.Partition,
		InitiatorProfile:   c.AWS.InitiatorProfile,
		SourceProfile:      c.AWS.SourceProfile,
		DestinationProfile: c.AWS.DestinationProfile,
	}
}

// StoreConfig returns the configuration of the state store.
func (c *Config) StoreConfig() statestore.Config {
	return statestore.Config{
		Backend: statestore.Backend(strings.ToLower(c.State.Backend)),
		Path:    c.State.Path,
		DSN:     c.State.DSN,
	}
}

// LoggerConfig returns the configuration of the runtime logger.
func (c *Config) LoggerConfig() (logger.Config, error) {
	lvl, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.Config{}, err
	}

	return logger.Config{Level: lvl, Encoding: c.Log.Encoding}, nil
}
