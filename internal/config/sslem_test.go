package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/echomask/internal/ssl"
)

func TestDefaultSSLEMConfig(t *testing.T) {
	cfg := DefaultSSLEMConfig()

	if cfg.MinSv == nil || *cfg.MinSv != -90 {
		t.Errorf("Expected MinSv -90, got %v", cfg.MinSv)
	}
	if cfg.MinDurationPings == nil || *cfg.MinDurationPings != 100 {
		t.Errorf("Expected MinDurationPings 100, got %v", cfg.MinDurationPings)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if got, want := cfg.Params(), ssl.DefaultParams(); got != want {
		t.Errorf("Params() = %+v, want %+v", got, want)
	}
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := EmptySSLEMConfig()
	if got, want := cfg.Params(), ssl.DefaultParams(); got != want {
		t.Errorf("Params() = %+v, want %+v", got, want)
	}
	if cfg.GetFrequencyKHz() != 12 {
		t.Errorf("GetFrequencyKHz() = %f, want 12", cfg.GetFrequencyKHz())
	}
}

func TestLoadSSLEMConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sslem.json")

	testJSON := `{
  "frequency_khz": 38,
  "sample_interval_m": 0.2,
  "min_duration_pings": 20,
  "row_threshold": 0.6
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadSSLEMConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetFrequencyKHz() != 38 {
		t.Errorf("GetFrequencyKHz() = %f, want 38", cfg.GetFrequencyKHz())
	}
	p := cfg.Params()
	if p.SampleIntervalM != 0.2 {
		t.Errorf("SampleIntervalM = %f, want 0.2", p.SampleIntervalM)
	}
	if p.MinDurationPings != 20 {
		t.Errorf("MinDurationPings = %d, want 20", p.MinDurationPings)
	}
	if p.RowThreshold != 0.6 {
		t.Errorf("RowThreshold = %f, want 0.6", p.RowThreshold)
	}
	// Unset fields keep their defaults.
	if p.MaxThicknessM != 300 {
		t.Errorf("MaxThicknessM = %f, want 300", p.MaxThicknessM)
	}
	if p.ColumnThreshold != 1.0 {
		t.Errorf("ColumnThreshold = %f, want 1.0", p.ColumnThreshold)
	}
}

func TestLoadSSLEMConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"wrong extension", "cfg.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"min_sv":`, "failed to parse"},
		{"row threshold out of range", "row.json", `{"row_threshold": 1.5}`, "row_threshold"},
		{"zero sample interval", "si.json", `{"sample_interval_m": 0}`, "sample_interval_m"},
		{"inverted sv bounds", "sv.json", `{"min_sv": -40, "max_sv": -80}`, "min Sv"},
		{"zero steps", "steps.json", `{"max_steps": 0}`, "max_steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			_, err := LoadSSLEMConfig(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadSSLEMConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadSSLEMConfig_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	big := make([]byte, 1024*1024+1)
	for i := range big {
		big[i] = ' '
	}
	if err := os.WriteFile(path, big, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	if _, err := LoadSSLEMConfig(path); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if got, want := cfg.Params(), ssl.DefaultParams(); got != want {
		t.Errorf("defaults file drifted from ssl.DefaultParams: got %+v, want %+v", got, want)
	}
	if cfg.GetFrequencyKHz() != 12 {
		t.Errorf("GetFrequencyKHz() = %f, want 12", cfg.GetFrequencyKHz())
	}
}
