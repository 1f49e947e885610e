package environment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	spatial "go.viam.com/simpleplanner/spatialmath"
	"go.viam.com/simpleplanner/utils"
)

// ManipulatorConfig describes one manipulator of an environment.
type ManipulatorConfig struct {
	Name string `json:"name"`
	// Model is a resource url of a kinematic model JSON file.
	Model     string              `json:"model"`
	TCPOffset *spatial.PoseConfig `json:"tcp_offset,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ManipulatorConfig) Validate(path string) error {
	if cfg.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if !utils.ValidNameRegex.MatchString(cfg.Name) {
		return goutils.NewConfigValidationError(path, utils.ErrInvalidName(cfg.Name))
	}
	if cfg.Model == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "model")
	}
	if _, err := cfg.TCPOffset.ParseConfig(); err != nil {
		return goutils.NewConfigValidationError(fmt.Sprintf("%s.tcp_offset", path), err)
	}
	return nil
}

// IKConfig tunes the inverse kinematics solver. Zero values select the solver defaults.
type IKConfig struct {
	MaxIterations int     `json:"max_iterations,omitempty"`
	Restarts      int     `json:"restarts,omitempty"`
	GoalThreshold float64 `json:"goal_threshold,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *IKConfig) Validate(path string) error {
	if cfg.MaxIterations < 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_iterations cannot be negative"))
	}
	if cfg.Restarts < 0 {
		return goutils.NewConfigValidationError(path, errors.New("restarts cannot be negative"))
	}
	if cfg.GoalThreshold < 0 {
		return goutils.NewConfigValidationError(path, errors.New("goal_threshold cannot be negative"))
	}
	return nil
}

// Config describes an environment: its manipulators, the current joint state and where to find packages.
type Config struct {
	Manipulators []ManipulatorConfig `json:"manipulators"`
	// State maps joint names to their current values. Joints not listed are at zero.
	State map[string]float64 `json:"state,omitempty"`
	// Packages maps package names to directories for resolving package:// urls.
	Packages map[string]string `json:"packages,omitempty"`
	IK       *IKConfig         `json:"ik,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Manipulators) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "manipulators")
	}
	seen := map[string]bool{}
	for idx := range cfg.Manipulators {
		manipPath := fmt.Sprintf("%s.manipulators.%d", path, idx)
		if err := cfg.Manipulators[idx].Validate(manipPath); err != nil {
			return err
		}
		name := cfg.Manipulators[idx].Name
		if seen[name] {
			return goutils.NewConfigValidationError(manipPath, errors.Errorf("duplicate manipulator name %q", name))
		}
		seen[name] = true
	}
	if cfg.IK != nil {
		if err := cfg.IK.Validate(fmt.Sprintf("%s.ik", path)); err != nil {
			return err
		}
	}
	return nil
}

// ReadConfig reads and validates an environment config file.
func ReadConfig(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read environment config")
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal environment config %q", path)
	}
	if err := cfg.Validate("environment"); err != nil {
		return nil, err
	}
	return cfg, nil
}
