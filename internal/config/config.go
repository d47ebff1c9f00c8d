package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the guild server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Territory upkeep
	UpkeepXPPerChunk int64         `yaml:"upkeep_xp_per_chunk"`
	UpkeepInterval   time.Duration `yaml:"upkeep_interval"`

	// Outposts by kind
	Siphon   OutpostConfig `yaml:"siphon"`
	Barracks OutpostConfig `yaml:"barracks"`
	Silo     SiloConfig    `yaml:"silo"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// OutpostConfig holds tuning for an XP-producing outpost kind.
type OutpostConfig struct {
	CreationCostXP int64         `yaml:"creation_cost_xp"`
	ProductionXP   int64         `yaml:"production_xp"`
	Interval       time.Duration `yaml:"interval"`
}

// SiloConfig holds tuning for the resource silo outpost.
// Resources maps an item kind to a quantity range written as "min-max"
// (or a single number), e.g. "iron_ingot: 2-5".
type SiloConfig struct {
	CreationCostXP int64             `yaml:"creation_cost_xp"`
	Interval       time.Duration     `yaml:"interval"`
	ChancePercent  int               `yaml:"chance_percent"`
	Resources      map[string]string `yaml:"resources"`
}

// ResourceRange is a parsed silo resource entry.
type ResourceRange struct {
	Kind string
	Min  int
	Max  int
}

// ResourceRanges parses the configured resource table.
// Malformed entries are skipped.
func (s SiloConfig) ResourceRanges() []ResourceRange {
	result := make([]ResourceRange, 0, len(s.Resources))
	for kind, spec := range s.Resources {
		min, max, ok := parseRange(spec)
		if !ok {
			continue
		}
		result = append(result, ResourceRange{Kind: kind, Min: min, Max: max})
	}
	return result
}

func parseRange(spec string) (min, max int, ok bool) {
	lo, hi, found := strings.Cut(strings.TrimSpace(spec), "-")
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, false
	}
	if found {
		max, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return 0, 0, false
		}
	} else {
		max = min
	}
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	return min, max, true
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:         "info",
		UpkeepXPPerChunk: 50,
		UpkeepInterval:   24 * time.Hour,
		Siphon: OutpostConfig{
			CreationCostXP: 1000,
			ProductionXP:   100,
			Interval:       6 * time.Hour,
		},
		Barracks: OutpostConfig{
			CreationCostXP: 750,
			ProductionXP:   25,
			Interval:       8 * time.Hour,
		},
		Silo: SiloConfig{
			CreationCostXP: 1200,
			Interval:       12 * time.Hour,
			ChancePercent:  20,
			Resources: map[string]string{
				"iron_ingot": "2-5",
				"coal":       "4-8",
				"oak_log":    "8-16",
			},
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "guildwar",
			Password: "guildwar",
			DBName:   "guildwar",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
