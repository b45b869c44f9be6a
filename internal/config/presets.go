package config

var Presets = map[string]*Config{
	// The tuning the rig ships with.
	"reference": {
		Dt: 0.02, Window: 12.0, TiltLimitDeg: 38.0,
		InitState:  InitStateConfig{Pos: -0.22},
		Controller: ControllerConfig{Setpoint: 0.10, Kp: 22.0, Ki: 1.2, Kd: 4.5},
		Plant:      PlantConfig{Mode: "sim", Baud: DefaultBaudRate},
	},
	// Pure proportional, visible steady-state bias.
	"proportional": {
		Dt: 0.02, Window: 12.0, TiltLimitDeg: 38.0,
		InitState:  InitStateConfig{Pos: -0.22},
		Controller: ControllerConfig{Setpoint: 0.10, Kp: 40.0},
		Plant:      PlantConfig{Mode: "sim", Baud: DefaultBaudRate},
	},
	// Low gains, slow crawl toward the setpoint.
	"sluggish": {
		Dt: 0.02, Window: 12.0, TiltLimitDeg: 38.0,
		InitState:  InitStateConfig{Pos: -0.22},
		Controller: ControllerConfig{Setpoint: 0.10, Kp: 6.0, Ki: 0.3, Kd: 1.0},
		Plant:      PlantConfig{Mode: "sim", Baud: DefaultBaudRate},
	},
	// Heavy derivative damping, overshoot-free but noisy on hardware.
	"damped": {
		Dt: 0.02, Window: 12.0, TiltLimitDeg: 38.0,
		InitState:  InitStateConfig{Pos: -0.22},
		Controller: ControllerConfig{Setpoint: 0.10, Kp: 22.0, Ki: 0.8, Kd: 12.0},
		Plant:      PlantConfig{Mode: "sim", Baud: DefaultBaudRate},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
