package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/echomask/internal/ssl"
)

// DefaultConfigPath is the path to the canonical SSLEM defaults file.
const DefaultConfigPath = "config/sslem.defaults.json"

// SSLEMConfig is the on-disk form of the SSL extraction settings. Every
// field is optional; the Get* methods fall back to the recommended values
// for a regional analysis of 12 kHz data.
type SSLEMConfig struct {
	FrequencyKHz *float64 `json:"frequency_khz,omitempty"`

	// Backscatter bounds (dB re 1 m^-1)
	NoiseFloor *float64 `json:"noise_floor,omitempty"`
	MinSv      *float64 `json:"min_sv,omitempty"`
	MaxSv      *float64 `json:"max_sv,omitempty"`

	// Acquisition
	PulseLengthMs   *float64 `json:"pulse_length_ms,omitempty"`
	SampleIntervalM *float64 `json:"sample_interval_m,omitempty"`

	// Layer geometry
	MinSeparationM   *float64 `json:"min_separation_m,omitempty"`
	MaxThicknessM    *float64 `json:"max_thickness_m,omitempty"`
	MinDurationPings *int     `json:"min_duration_pings,omitempty"`
	MinThicknessM    *float64 `json:"min_thickness_m,omitempty"`

	// Detector and consensus filters
	MaxSteps        *int     `json:"max_steps,omitempty"`
	RowThreshold    *float64 `json:"row_threshold,omitempty"`
	ColumnThreshold *float64 `json:"column_threshold,omitempty"`
	Workers         *int     `json:"workers,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySSLEMConfig returns an SSLEMConfig with all fields set to nil.
func EmptySSLEMConfig() *SSLEMConfig {
	return &SSLEMConfig{}
}

// DefaultSSLEMConfig returns a config with every field set to its default.
func DefaultSSLEMConfig() *SSLEMConfig {
	d := ssl.DefaultParams()
	return &SSLEMConfig{
		FrequencyKHz:     ptrFloat64(12),
		NoiseFloor:       ptrFloat64(d.NoiseFloor),
		MinSv:            ptrFloat64(d.MinSv),
		MaxSv:            ptrFloat64(d.MaxSv),
		PulseLengthMs:    ptrFloat64(d.PulseLengthMs),
		SampleIntervalM:  ptrFloat64(d.SampleIntervalM),
		MinSeparationM:   ptrFloat64(d.MinSeparationM),
		MaxThicknessM:    ptrFloat64(d.MaxThicknessM),
		MinDurationPings: ptrInt(d.MinDurationPings),
		MinThicknessM:    ptrFloat64(d.MinThicknessM),
		MaxSteps:         ptrInt(d.MaxSteps),
		RowThreshold:     ptrFloat64(d.RowThreshold),
		ColumnThreshold:  ptrFloat64(d.ColumnThreshold),
		Workers:          ptrInt(d.Workers),
	}
}

// LoadSSLEMConfig loads an SSLEMConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadSSLEMConfig(path string) (*SSLEMConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySSLEMConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SSLEMConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSSLEMConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the fields that are set. The full parameter set is
// checked again by ssl.Params.Validate once defaults are applied.
func (c *SSLEMConfig) Validate() error {
	if c.FrequencyKHz != nil && *c.FrequencyKHz <= 0 {
		return fmt.Errorf("frequency_khz must be positive, got %f", *c.FrequencyKHz)
	}
	if c.SampleIntervalM != nil && *c.SampleIntervalM <= 0 {
		return fmt.Errorf("sample_interval_m must be positive, got %f", *c.SampleIntervalM)
	}
	if c.RowThreshold != nil && (*c.RowThreshold < 0 || *c.RowThreshold > 1) {
		return fmt.Errorf("row_threshold must be between 0 and 1, got %f", *c.RowThreshold)
	}
	if c.ColumnThreshold != nil && (*c.ColumnThreshold < 0 || *c.ColumnThreshold > 1) {
		return fmt.Errorf("column_threshold must be between 0 and 1, got %f", *c.ColumnThreshold)
	}
	if c.MinDurationPings != nil && *c.MinDurationPings < 1 {
		return fmt.Errorf("min_duration_pings must be at least 1, got %d", *c.MinDurationPings)
	}
	if c.MaxSteps != nil && *c.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be at least 1, got %d", *c.MaxSteps)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	return nil
}

// Params converts the config to pipeline parameters, applying defaults.
func (c *SSLEMConfig) Params() ssl.Params {
	return ssl.Params{
		NoiseFloor:       c.GetNoiseFloor(),
		MinSv:            c.GetMinSv(),
		MaxSv:            c.GetMaxSv(),
		PulseLengthMs:    c.GetPulseLengthMs(),
		SampleIntervalM:  c.GetSampleIntervalM(),
		MinSeparationM:   c.GetMinSeparationM(),
		MaxThicknessM:    c.GetMaxThicknessM(),
		MinDurationPings: c.GetMinDurationPings(),
		MinThicknessM:    c.GetMinThicknessM(),
		MaxSteps:         c.GetMaxSteps(),
		RowThreshold:     c.GetRowThreshold(),
		ColumnThreshold:  c.GetColumnThreshold(),
		Workers:          c.GetWorkers(),
	}
}

// GetFrequencyKHz returns the frequency_khz value or the default.
func (c *SSLEMConfig) GetFrequencyKHz() float64 {
	if c.FrequencyKHz == nil {
		return 12
	}
	return *c.FrequencyKHz
}

// GetNoiseFloor returns the noise_floor value or the default.
func (c *SSLEMConfig) GetNoiseFloor() float64 {
	if c.NoiseFloor == nil {
		return -999
	}
	return *c.NoiseFloor
}

// GetMinSv returns the min_sv value or the default.
func (c *SSLEMConfig) GetMinSv() float64 {
	if c.MinSv == nil {
		return -90
	}
	return *c.MinSv
}

// GetMaxSv returns the max_sv value or the default.
func (c *SSLEMConfig) GetMaxSv() float64 {
	if c.MaxSv == nil {
		return -50
	}
	return *c.MaxSv
}

// GetPulseLengthMs returns the pulse_length_ms value or the default.
func (c *SSLEMConfig) GetPulseLengthMs() float64 {
	if c.PulseLengthMs == nil {
		return 16.384
	}
	return *c.PulseLengthMs
}

// GetSampleIntervalM returns the sample_interval_m value or the default.
func (c *SSLEMConfig) GetSampleIntervalM() float64 {
	if c.SampleIntervalM == nil {
		return 0.4
	}
	return *c.SampleIntervalM
}

// GetMinSeparationM returns the min_separation_m value or the default.
func (c *SSLEMConfig) GetMinSeparationM() float64 {
	if c.MinSeparationM == nil {
		return 20
	}
	return *c.MinSeparationM
}

// GetMaxThicknessM returns the max_thickness_m value or the default.
func (c *SSLEMConfig) GetMaxThicknessM() float64 {
	if c.MaxThicknessM == nil {
		return 300
	}
	return *c.MaxThicknessM
}

// GetMinDurationPings returns the min_duration_pings value or the default.
func (c *SSLEMConfig) GetMinDurationPings() int {
	if c.MinDurationPings == nil {
		return 100
	}
	return *c.MinDurationPings
}

// GetMinThicknessM returns the min_thickness_m value or the default.
func (c *SSLEMConfig) GetMinThicknessM() float64 {
	if c.MinThicknessM == nil {
		return 50
	}
	return *c.MinThicknessM
}

// GetMaxSteps returns the max_steps value or the default.
func (c *SSLEMConfig) GetMaxSteps() int {
	if c.MaxSteps == nil {
		return 10
	}
	return *c.MaxSteps
}

// GetRowThreshold returns the row_threshold value or the default.
func (c *SSLEMConfig) GetRowThreshold() float64 {
	if c.RowThreshold == nil {
		return 0.5
	}
	return *c.RowThreshold
}

// GetColumnThreshold returns the column_threshold value or the default.
func (c *SSLEMConfig) GetColumnThreshold() float64 {
	if c.ColumnThreshold == nil {
		return 1.0
	}
	return *c.ColumnThreshold
}

// GetWorkers returns the workers value or the default (0, one per CPU).
func (c *SSLEMConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}
