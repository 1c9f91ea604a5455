// Package config loads the simulation's operating parameters — worker
// count override, telemetry listen address, debug verbosity, telemetry
// push rate — from an optional YAML file. It never touches network
// topology: that stays the job of package input.
//
// Loading follows the teacher's reinforcement.FromYaml double-decode:
// viper reads the raw document (no environment or flag overlay is
// configured, so only the file's contents count), then the relevant
// sub-document is re-marshaled and
// decoded with yaml.v3 into the typed RunConfig, avoiding viper's own
// (looser, case-folding) struct decoding.
package config

import (
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// RunConfig holds operator-tunable knobs for a run. The zero value is
// valid: every field has a sensible default applied by Load.
type RunConfig struct {
	Workers        int           `yaml:"workers" mapstructure:"workers"`
	TelemetryAddr  string        `yaml:"telemetry_addr" mapstructure:"telemetry_addr"`
	Debug          bool          `yaml:"debug" mapstructure:"debug"`
	TelemetryRate  time.Duration `yaml:"telemetry_rate" mapstructure:"telemetry_rate"`
}

// outerConfig mirrors the teacher's OuterConfig: a loosely-typed
// envelope viper can decode without knowing RunConfig's real shape,
// whose Def field is then strictly re-decoded with yaml.v3.
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"run"`
}

func defaults() RunConfig {
	return RunConfig{
		Workers:       1,
		TelemetryAddr: "",
		Debug:         false,
		TelemetryRate: 200 * time.Millisecond,
	}
}

// Load reads path as YAML and returns a RunConfig with defaults filled
// in for anything the file omits. A missing path is not an error: it
// simply yields the defaults, since telemetry/debug tuning is entirely
// optional (§1 Non-goals: no persistence, no required config).
func Load(path string) (RunConfig, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var outer outerConfig
	if err := v.Unmarshal(&outer); err != nil {
		return cfg, err
	}
	if outer.Def == nil {
		return cfg, nil
	}

	raw, err := yaml.Marshal(outer.Def)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Watch re-invokes onChange with the freshly reloaded RunConfig
// whenever path changes on disk, using viper's fsnotify-backed watcher.
// It never touches the network.Model or in-flight vehicle state; what
// happens with the reloaded RunConfig is entirely up to onChange.
func Watch(path string, onChange func(RunConfig)) error {
	if path == "" {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		if cfg, err := Load(path); err == nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
	return nil
}
