package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"danmaku/internal/ingest"
)

// LoadYAMLConfig load config from filename in YAML format
func LoadYAMLConfig(filename string, cfg interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ReadFile: %v", err)
	}
	err = yaml.Unmarshal(data, cfg)
	return err
}

// InitConfig overlays the YAML file at configPath on DefaultConfig. A missing
// file is not an error when allowMissing is set, so the CLI runs without etc/.
func InitConfig(configPath string, allowMissing bool) (*Config, error) {
	conf := DefaultConfig()

	if allowMissing {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return conf, nil
		}
	}

	err := LoadYAMLConfig(configPath, conf)
	if err != nil {
		return nil, err
	}
	if conf.Search.BatchSize <= 0 || conf.Search.BatchSize > ingest.MaxBatchSize {
		return nil, fmt.Errorf("search.batchSize must be in [1, %d], got %d", ingest.MaxBatchSize, conf.Search.BatchSize)
	}

	return conf, nil
}
