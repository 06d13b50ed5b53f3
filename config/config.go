package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/velosched/velosched/core/groups"
	"github.com/velosched/velosched/core/metrics"
	"github.com/velosched/velosched/core/model"
)

type Config struct {
	Storage   StorageConfig        `json:"storage"`
	Season    model.SeasonSettings `json:"season"`
	Partition groups.Settings      `json:"partition"`
	Schedule  ScheduleConfig       `json:"schedule"`
	Metrics   metrics.Config       `json:"metrics"`
	Logging   LoggingConfig        `json:"logging"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("VS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "vs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Storage.SetDefaults()
	cfg.Schedule.SetDefaults()
	cfg.Logging.SetDefaults()
	if isZeroPartition(cfg.Partition) {
		cfg.Partition = groups.DefaultSettings()
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Partition.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isZeroPartition(s groups.Settings) bool {
	return s == groups.Settings{}
}
