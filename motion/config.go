package motion

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the file form of an engine setup.
//
// Example:
//
//	theta: 1
//	sigma_s: 1.22
//	temperature: 2
//	iterations: 5
//	seed: difference
//	update: in-place
//	parallel: false
type Config struct {
	Parameters `yaml:",inline"`
	// Iterations is the number of adaptive rounds.
	Iterations int `json:"iterations" yaml:"iterations"`
	// Seed is "difference" or "fixed".
	Seed SeedMode `json:"seed" yaml:"seed"`
	// Update is "in-place" or "synchronous".
	Update UpdateOrder `json:"update" yaml:"update"`
	// Parallel enables row-parallel passes.
	Parallel bool `json:"parallel" yaml:"parallel"`
}

// configJSON holds the execution fields of a Config. The embedded
// Parameters marshal themselves and are merged into the same object.
type configJSON struct {
	Iterations int         `json:"iterations"`
	Seed       SeedMode    `json:"seed"`
	Update     UpdateOrder `json:"update"`
	Parallel   bool        `json:"parallel"`
}

// MarshalJSON writes the parameters and execution fields as one flat object,
// matching the YAML layout.
func (c Config) MarshalJSON() ([]byte, error) {
	params, err := json.Marshal(c.Parameters)
	if err != nil {
		return nil, err
	}
	exec, err := json.Marshal(configJSON{
		Iterations: c.Iterations,
		Seed:       c.Seed,
		Update:     c.Update,
		Parallel:   c.Parallel,
	})
	if err != nil {
		return nil, err
	}
	// {"theta":...} + {"iterations":...} -> {"theta":...,"iterations":...}
	out := bytes.TrimSuffix(params, []byte("}"))
	out = append(out, ',')
	return append(out, exec[1:]...), nil
}

// UnmarshalJSON reads the flat object written by MarshalJSON. Absent keys
// keep their current value.
func (c *Config) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.Parameters); err != nil {
		return err
	}
	exec := configJSON{
		Iterations: c.Iterations,
		Seed:       c.Seed,
		Update:     c.Update,
		Parallel:   c.Parallel,
	}
	if err := json.Unmarshal(data, &exec); err != nil {
		return err
	}
	c.Iterations, c.Seed, c.Update, c.Parallel = exec.Iterations, exec.Seed, exec.Update, exec.Parallel
	return nil
}

// DefaultConfig returns DefaultParameters and DefaultOptions with DefaultIterations rounds.
func DefaultConfig() Config {
	opts := DefaultOptions()
	return Config{
		Parameters: DefaultParameters(),
		Iterations: DefaultIterations,
		Seed:       opts.Seed,
		Update:     opts.Update,
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// DefaultConfig values.
//
// Arguments:
//   - path: Path to the YAML file.
//
// Returns:
//   - Config: The merged config.
//   - error: An error if the file cannot be read or parsed.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if _, err := ParseSeedMode(string(cfg.Seed)); err != nil {
		return Config{}, err
	}
	if _, err := ParseUpdateOrder(string(cfg.Update)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts the execution fields into engine Options.
func (c Config) Options() Options {
	return Options{
		Seed:     c.Seed,
		Update:   c.Update,
		Parallel: c.Parallel,
	}
}

// Engine builds a ThresholdEngine from the config.
func (c Config) Engine() (*ThresholdEngine, error) {
	return NewThresholdEngine(c.Parameters, c.Options())
}
