package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CASETREND"

// Load reads the pipeline file at path, decoding it by extension (.json,
// .yaml/.yml or .toml), and then applies CASETREND_* environment overrides.
func Load(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := ApplyEnv(&p); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// Decode parses data in the format named by ext (with or without the dot).
func Decode(data []byte, ext string) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, err
		}
	case "yaml", "yml":
		if err := yaml.UnmarshalStrict(data, &p); err != nil {
			return Pipeline{}, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return Pipeline{}, err
		}
	default:
		return Pipeline{}, fmt.Errorf("unsupported config format %q (want .json, .yaml, .yml or .toml)", ext)
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	return p, nil
}

// ApplyEnv overrides fields of p from the environment. Only variables that
// are set take effect; everything else keeps the file's value.
func ApplyEnv(p *Pipeline) error {
	if err := envconfig.Process(EnvPrefix, p); err != nil {
		return fmt.Errorf("config from env: %w", err)
	}
	return nil
}
