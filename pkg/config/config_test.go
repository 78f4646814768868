package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/james-see/smfcodec/pkg/converter"
	"github.com/james-see/smfcodec/pkg/smf"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("LoadFrom() = %+v, want defaults", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Strict = true
	cfg.RunningStatus = "compact"
	cfg.TextEncoding = "shiftjis"
	cfg.Server.Port = 9000

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("LoadFrom() = %+v, want %+v", got, cfg)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("skip_invalid: true\nserver:\n  port: 3000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !cfg.SkipInvalid || cfg.Server.Port != 3000 {
		t.Errorf("LoadFrom() = %+v", cfg)
	}
	if cfg.RunningStatus != "preserve" || cfg.TextEncoding != "utf8" {
		t.Errorf("LoadFrom() lost defaults: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"policy":   "running_status: sometimes\n",
		"encoding": "text_encoding: ebcdic\n",
		"port":     "server:\n  port: 70000\n",
		"syntax":   "strict: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom() error = nil")
			}
		})
	}
}

func TestConverterOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = true
	cfg.RunningStatus = "explicit"
	cfg.TextEncoding = "latin1"

	opts, err := cfg.ConverterOptions()
	if err != nil {
		t.Fatalf("ConverterOptions() error = %v", err)
	}
	if !opts.Strict || opts.Policy != smf.ExplicitStatus || opts.TextEncoding != converter.TextLatin1 {
		t.Errorf("ConverterOptions() = %+v", opts)
	}
	if opts.MaxChunkSize != cfg.MaxChunkSize {
		t.Errorf("ConverterOptions() MaxChunkSize = %d, want %d", opts.MaxChunkSize, cfg.MaxChunkSize)
	}
}
