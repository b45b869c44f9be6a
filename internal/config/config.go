package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Reference rig defaults. The gains assume the 50 Hz loop rate; see the
// sim package docs before changing dt.
const (
	DefaultDt           = 0.02
	DefaultWindow       = 12.0
	DefaultSetpoint     = 0.10
	DefaultKp           = 22.0
	DefaultKi           = 1.2
	DefaultKd           = 4.5
	DefaultInitPos      = -0.22
	DefaultTiltLimitDeg = 38.0
	DefaultBaudRate     = 115200
)

type Config struct {
	Dt           float64          `yaml:"dt"`
	Duration     float64          `yaml:"duration"` // 0 runs until interrupted
	Window       float64          `yaml:"window"`
	TiltLimitDeg float64          `yaml:"tilt_limit_deg"`
	InitState    InitStateConfig  `yaml:"init_state"`
	Controller   ControllerConfig `yaml:"controller"`
	Plant        PlantConfig      `yaml:"plant"`
}

type InitStateConfig struct {
	Pos float64 `yaml:"pos"`
	Vel float64 `yaml:"vel"`
}

type ControllerConfig struct {
	Setpoint float64 `yaml:"setpoint"`
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Kd       float64 `yaml:"kd"`
}

type PlantConfig struct {
	Mode   string `yaml:"mode"` // "sim" or "serial"
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:           DefaultDt,
		Window:       DefaultWindow,
		TiltLimitDeg: DefaultTiltLimitDeg,
		InitState: InitStateConfig{
			Pos: DefaultInitPos,
		},
		Controller: ControllerConfig{
			Setpoint: DefaultSetpoint,
			Kp:       DefaultKp,
			Ki:       DefaultKi,
			Kd:       DefaultKd,
		},
		Plant: PlantConfig{
			Mode: "sim",
			Baud: DefaultBaudRate,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
