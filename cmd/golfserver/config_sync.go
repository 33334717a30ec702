package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"minigolf/internal/config"
)

const (
	envConfigJSON    = "GOLF_CONFIG_JSON"
	envConfigYAMLB64 = "GOLF_CONFIG_YAML_B64"
)

// writeConfigFromEnv materialises a configuration handed over through the
// environment at cfgPath. Payloads are layered over the defaults, so a
// partial document only overrides what it names.
func writeConfigFromEnv(cfgPath string) (bool, error) {
	jsonPayload := os.Getenv(envConfigJSON)
	yamlPayload := os.Getenv(envConfigYAMLB64)

	if jsonPayload == "" && yamlPayload == "" {
		return false, nil
	}
	if cfgPath == "" {
		return false, errors.New("configuration provided through the environment but no -config path supplied")
	}

	cfg := config.Default()
	if jsonPayload != "" {
		if err := json.Unmarshal([]byte(jsonPayload), cfg); err != nil {
			return false, fmt.Errorf("decode %s: %w", envConfigJSON, err)
		}
	} else {
		data, err := base64.StdEncoding.DecodeString(yamlPayload)
		if err != nil {
			return false, fmt.Errorf("decode %s: %w", envConfigYAMLB64, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return false, fmt.Errorf("parse %s: %w", envConfigYAMLB64, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("validate environment config: %w", err)
	}

	dir := filepath.Dir(cfgPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal config json: %w", err)
	}
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return false, fmt.Errorf("write config file: %w", err)
	}
	return true, nil
}
