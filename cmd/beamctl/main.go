package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/san-kum/beamctl/internal/config"
	"github.com/san-kum/beamctl/internal/metrics"
	"github.com/san-kum/beamctl/internal/params"
	"github.com/san-kum/beamctl/internal/plant"
	"github.com/san-kum/beamctl/internal/sim"
	"github.com/spf13/cobra"
)

var (
	dt           float64
	duration     float64
	window       float64
	setpoint     float64
	kp           float64
	ki           float64
	kd           float64
	pos          float64
	vel          float64
	plantMode    string
	serialDevice string
	baudRate     int
	configFile   string
	preset       string
	fast         bool
	tune         bool
	statusEvery  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "beamctl",
		Short: "ball-and-beam PID control loop",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the control loop",
		RunE:  runLoop,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (gains are tuned for 0.02)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (0 = until interrupted)")
	runCmd.Flags().Float64Var(&window, "window", config.DefaultWindow, "history window in seconds")
	runCmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "target position")
	runCmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	runCmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	runCmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	runCmd.Flags().Float64Var(&pos, "pos", config.DefaultInitPos, "initial ball position")
	runCmd.Flags().Float64Var(&vel, "vel", 0, "initial ball velocity")
	runCmd.Flags().StringVar(&plantMode, "plant", "sim", "plant variant (sim|serial)")
	runCmd.Flags().StringVar(&serialDevice, "device", "", "serial device for the hardware rig")
	runCmd.Flags().IntVar(&baudRate, "baud", config.DefaultBaudRate, "serial baud rate")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&fast, "fast", false, "run without real-time pacing (requires --time)")
	runCmd.Flags().BoolVar(&tune, "tune", false, "accept live tuning commands on stdin")
	runCmd.Flags().Float64Var(&statusEvery, "status", 1.0, "status line interval in seconds (0 = off)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" && configFile != "" {
		return nil, fmt.Errorf("--preset and --config are mutually exclusive; put overrides in the file or on flags")
	}
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (see: beamctl presets)", preset)
		}
		c := *p
		cfg = &c
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Explicit flags win over preset and file.
	flagOverrides := map[string]func(){
		"dt":       func() { cfg.Dt = dt },
		"time":     func() { cfg.Duration = duration },
		"window":   func() { cfg.Window = window },
		"setpoint": func() { cfg.Controller.Setpoint = setpoint },
		"kp":       func() { cfg.Controller.Kp = kp },
		"ki":       func() { cfg.Controller.Ki = ki },
		"kd":       func() { cfg.Controller.Kd = kd },
		"pos":      func() { cfg.InitState.Pos = pos },
		"vel":      func() { cfg.InitState.Vel = vel },
		"plant":    func() { cfg.Plant.Mode = plantMode },
		"device":   func() { cfg.Plant.Device = serialDevice },
		"baud":     func() { cfg.Plant.Baud = baudRate },
	}
	for name, apply := range flagOverrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	return cfg, nil
}

func buildPlant(cfg *config.Config, initial plant.State) (plant.Plant, func() error, error) {
	switch cfg.Plant.Mode {
	case "", "sim":
		return plant.NewSimulated(initial), nil, nil
	case "serial":
		if cfg.Plant.Device == "" {
			return nil, nil, fmt.Errorf("serial plant needs --device")
		}
		bus, err := plant.OpenSerialBus(cfg.Plant.Device, cfg.Plant.Baud)
		if err != nil {
			return nil, nil, err
		}
		return plant.NewHardware(bus, initial), bus.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown plant %q", cfg.Plant.Mode)
	}
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	store, err := params.NewStore(params.Parameters{
		Setpoint: cfg.Controller.Setpoint,
		Kp:       cfg.Controller.Kp,
		Ki:       cfg.Controller.Ki,
		Kd:       cfg.Controller.Kd,
	})
	if err != nil {
		return err
	}

	initial := plant.State{Position: cfg.InitState.Pos, Velocity: cfg.InitState.Vel}
	pl, closeBus, err := buildPlant(cfg, initial)
	if err != nil {
		return err
	}
	if closeBus != nil {
		defer closeBus()
	}

	loop, err := sim.New(pl, store, initial, sim.Config{
		Dt:         cfg.Dt,
		Window:     cfg.Window,
		TiltMinDeg: -cfg.TiltLimitDeg,
		TiltMaxDeg: cfg.TiltLimitDeg,
	})
	if err != nil {
		return err
	}

	if statusEvery > 0 {
		loop.AddObserver(newStatusPrinter(os.Stdout, statusEvery, cfg.Dt))
	}
	runMetrics := []metrics.Metric{
		metrics.NewControlEffort(),
		metrics.NewTrackingError(),
		metrics.NewSaturation(cfg.TiltLimitDeg),
	}
	for _, m := range runMetrics {
		loop.AddObserver(m)
	}
	loop.OnFault(func(err error) {
		fmt.Fprintf(os.Stderr, "degraded: %v\n", err)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tune {
		go runTuner(store, os.Stdin, os.Stdout)
	}

	if fast {
		if cfg.Duration <= 0 {
			return fmt.Errorf("--fast needs --time")
		}
		err = loop.RunSteps(ctx, int(cfg.Duration/cfg.Dt))
	} else {
		if cfg.Duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Duration*float64(time.Second)))
			defer cancel()
		}
		err = loop.Run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	printSummary(os.Stdout, loop, runMetrics)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSETPOINT\tKP\tKI\tKD")
	for _, name := range config.ListPresets() {
		c := config.Presets[name].Controller
		fmt.Fprintf(w, "%s\t%.2f\t%.1f\t%.1f\t%.1f\n", name, c.Setpoint, c.Kp, c.Ki, c.Kd)
	}
	return w.Flush()
}

func printSummary(w *os.File, loop *sim.Loop, runMetrics []metrics.Metric) {
	s := loop.Snapshot()
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "t\t%.2fs\n", s.T)
	fmt.Fprintf(tw, "setpoint\t%+.3f m\n", s.Setpoint)
	fmt.Fprintf(tw, "position\t%+.3f m\n", s.Position)
	fmt.Fprintf(tw, "tilt\t%+.1f deg\n", s.TiltDeg)
	fmt.Fprintf(tw, "gains\tKp=%.1f Ki=%.2f Kd=%.1f\n", s.Kp, s.Ki, s.Kd)
	for _, m := range runMetrics {
		fmt.Fprintf(tw, "%s\t%.4f\n", m.Name(), m.Value())
	}
	tw.Flush()
}
