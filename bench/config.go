package bench

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration reads YAML values like "15s" or plain nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("config: bad duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the explicit configuration object for one benchmark invocation.
// Nothing lives in package-level state, so tests can hold several configs
// side by side.
type Config struct {
	Postgres ConnConfig `yaml:"postgres"`
	MySQL    ConnConfig `yaml:"mysql"`

	Levels   []int    `yaml:"levels"`
	Queries  int      `yaml:"queries"`  // per worker; count mode
	Duration Duration `yaml:"duration"` // duration mode, excludes Queries
	Warmup   int      `yaml:"warmup"`

	PoolSize    int      `yaml:"pool_size"`
	PoolTimeout Duration `yaml:"pool_timeout"`

	RateLimit     int      `yaml:"rate_limit"`
	Cooldown      Duration `yaml:"cooldown"`
	SafetyTimeout Duration `yaml:"safety_timeout"`

	SeedRows int   `yaml:"seed_rows"`
	Seed     int64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Postgres:      ConnConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "postgres", Database: "postgres"},
		MySQL:         ConnConfig{Host: "localhost", Port: 3306, User: "root", Password: "root", Database: "bench"},
		Levels:        []int{1, 5, 10, 20},
		Queries:       100,
		Warmup:        100,
		PoolSize:      50,
		PoolTimeout:   Duration(10 * time.Second),
		Cooldown:      Duration(3 * time.Second),
		SafetyTimeout: Duration(5 * time.Minute),
		SeedRows:      100_000,
		Seed:          1,
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize raises the pool size to cover the deepest level; a pool smaller
// than the concurrency would starve workers permanently.
func (c *Config) Normalize() {
	for _, l := range c.Levels {
		if l > c.PoolSize {
			c.PoolSize = l
		}
	}
}

func (c Config) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("config: no concurrency levels")
	}
	for _, l := range c.Levels {
		if l < 1 {
			return fmt.Errorf("config: concurrency level %d is not positive", l)
		}
	}
	if c.Queries <= 0 && c.Duration <= 0 {
		return fmt.Errorf("config: need queries or duration")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("config: pool size %d is not positive", c.PoolSize)
	}
	return nil
}

// Stop derives the stop condition: a configured duration wins over the
// per-worker query count.
func (c Config) Stop() StopCondition {
	if c.Duration > 0 {
		return StopCondition{Duration: time.Duration(c.Duration)}
	}
	return StopCondition{Iterations: c.Queries}
}
