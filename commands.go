package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"mach_cas_calc/airdata"
	"mach_cas_calc/asky"
	"mach_cas_calc/units"
)

// app is what every command needs once the configuration is loaded.
type app struct {
	configPath string
	cfg        *Config
	logger     *slog.Logger
	conv       *airdata.Converter
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "mach_cas_calc",
		Short:         "Convert between calibrated airspeed and Mach number",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		newMachCommand(a),
		newCASCommand(a),
		newAtmosphereCommand(a),
		newTableCommand(a),
		newGroundSpeedCommand(a),
		newTempLimitCommand(a),
		newEnvelopeCommand(a),
		newConfigCommand(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.conv = airdata.NewConverter(
		airdata.WithSolver(cfg.SolverSettings()),
		airdata.WithLogger(logger),
	)
	logger.Debug("configuration loaded", "file", a.configPath, "tolerance", cfg.Solver.Tolerance)
	return nil
}

// flight condition flags shared by mach, cas and envelope
type conditionFlags struct {
	altFt  float64
	tempC  float64
	isaDev float64
}

func (f *conditionFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.altFt, "alt", 0, "pressure altitude, ft")
	fs.Float64Var(&f.tempC, "temp", 0, "static air temperature, degC (default ISA)")
	fs.Float64Var(&f.isaDev, "isa-dev", 0, "deviation from ISA temperature, degC")
}

/*
Altitude and static temperature of the condition.

	Returns:
	    altitude, m
	    static temperature, K
*/
func (f *conditionFlags) resolve(cmd *cobra.Command) (float64, float64, error) {
	h := units.FeetToMetres(f.altFt)
	if cmd.Flags().Changed("temp") {
		if cmd.Flags().Changed("isa-dev") {
			return 0, 0, fmt.Errorf("--temp and --isa-dev are mutually exclusive")
		}
		return h, units.CelsiusToKelvin(f.tempC), nil
	}
	t, err := airdata.TemperatureFromISADeviation(h, f.isaDev)
	return h, t, err
}

func newMachCommand(a *app) *cobra.Command {
	var cas float64
	var cond conditionFlags

	cmd := &cobra.Command{
		Use:   "mach",
		Short: "Mach number from calibrated airspeed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, t, err := cond.resolve(cmd)
			if err != nil {
				return err
			}
			res, err := a.conv.MachFromCalibratedAirspeed(units.KnotsToMetresPerSecond(cas), h, t)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Float64Var(&cas, "cas", 0, "calibrated airspeed, kt")
	cond.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("cas")
	_ = cmd.MarkFlagRequired("alt")
	return cmd
}

func newCASCommand(a *app) *cobra.Command {
	var mach float64
	var cond conditionFlags

	cmd := &cobra.Command{
		Use:   "cas",
		Short: "Calibrated airspeed from Mach number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, t, err := cond.resolve(cmd)
			if err != nil {
				return err
			}
			res, err := a.conv.CalibratedAirspeedFromMach(mach, h, t)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Float64Var(&mach, "mach", 0, "Mach number")
	cond.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("mach")
	_ = cmd.MarkFlagRequired("alt")
	return cmd
}

func newAtmosphereCommand(_ *app) *cobra.Command {
	var altFt float64

	cmd := &cobra.Command{
		Use:   "atmosphere",
		Short: "Standard atmosphere at a pressure altitude",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := airdata.StandardAtmosphere(units.FeetToMetres(altFt))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "FL%-6.0f  %8.0f ft  %8.1f m\n", units.FlightLevel(c.Altitude), altFt, c.Altitude)
			fmt.Fprintf(w, "T      %8.2f degC  theta %.6f\n", units.KelvinToCelsius(c.Temperature), c.TemperatureRatio())
			fmt.Fprintf(w, "p      %8.2f hPa   delta %.6f\n", units.PascalsToHectopascals(c.Pressure), c.PressureRatio())
			fmt.Fprintf(w, "rho    %8.5f kg/m3 sigma %.6f\n", c.Density, c.DensityRatio())
			fmt.Fprintf(w, "a      %8.2f kt\n", units.MetresPerSecondToKnots(c.SpeedOfSound))
			return nil
		},
	}
	cmd.Flags().Float64Var(&altFt, "alt", 0, "pressure altitude, ft")
	_ = cmd.MarkFlagRequired("alt")
	return cmd
}

func newTableCommand(a *app) *cobra.Command {
	var s sweep
	var casKt, isaDevC float64

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Sweep a fixed Mach number or CAS over altitude and write CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s.CAS = units.KnotsToMetresPerSecond(casKt)
			s.ISADeviation = isaDevC
			rows, err := runSweep(cmd.Context(), a.conv, s, a.cfg.Table.Workers)
			if err != nil {
				return err
			}
			a.logger.Info("table computed", "rows", len(rows))
			return writeTable(cmd.OutOrStdout(), rows)
		},
	}
	fs := cmd.Flags()
	fs.Float64Var(&s.Mach, "mach", 0, "fixed Mach number")
	fs.Float64Var(&casKt, "cas", 0, "fixed calibrated airspeed, kt")
	fs.Float64Var(&s.FromFt, "from", 0, "lowest altitude, ft")
	fs.Float64Var(&s.ToFt, "to", 60000, "highest altitude, ft")
	fs.Float64Var(&s.StepFt, "step", 1000, "altitude step, ft")
	fs.Float64Var(&isaDevC, "isa-dev", 0, "deviation from ISA temperature, degC")
	cmd.MarkFlagsOneRequired("mach", "cas")
	cmd.MarkFlagsMutuallyExclusive("mach", "cas")
	return cmd
}

func newGroundSpeedCommand(a *app) *cobra.Command {
	var lat, lon string
	var dms bool
	var altsFt []float64
	var mach, heading float64

	cmd := &cobra.Command{
		Use:   "groundspeed",
		Short: "Ground speed at a fixed Mach number through ActiveSky weather",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pos, err := asky.ParsePosition(lat, lon, dms)
			if err != nil {
				return err
			}

			client := asky.NewClient(a.cfg.ActiveSky.Host, a.cfg.ActiveSky.Port, a.cfg.ActiveSky.Timeout,
				asky.WithLogger(a.logger))
			layers, err := client.GetAtmosphere(cmd.Context(), pos, altsFt)
			if err != nil {
				return err
			}
			speeds, err := asky.GroundSpeeds(layers, mach, heading)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-7s %-9s %-8s %-8s %-8s\n", "FL", "wind", "OAT", "TAS", "GS")
			for _, s := range speeds {
				fmt.Fprintf(w, "FL%-5.0f %03.0f/%-5.0f %-8.1f %-8.1f %-8.1f\n",
					units.FlightLevel(s.Altitude),
					s.WindDirection, units.MetresPerSecondToKnots(s.WindSpeed),
					units.KelvinToCelsius(s.Temperature),
					units.MetresPerSecondToKnots(s.TrueAirspeed),
					units.MetresPerSecondToKnots(s.GroundSpeed))
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&lat, "lat", "", "latitude, decimal degree or dd-mm-ss.sssN with --dms")
	fs.StringVar(&lon, "lon", "", "longitude, decimal degree or ddd-mm-ss.sssE with --dms")
	fs.BoolVar(&dms, "dms", false, "positions are degrees-minutes-seconds")
	fs.Float64SliceVar(&altsFt, "alts", []float64{50000, 55000, 60000}, "altitudes, ft")
	fs.Float64Var(&mach, "mach", 2.0, "Mach number")
	fs.Float64Var(&heading, "heading", 0, "true heading, degree")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newTempLimitCommand(a *app) *cobra.Command {
	var staticC []float64

	cmd := &cobra.Command{
		Use:   "templimit",
		Short: "Highest Mach number within the total temperature limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.cfg.LoadEnvelope()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "total temperature limit %.1f degC\n", units.KelvinToCelsius(e.MaxTotalTemperature))
			for _, c := range staticC {
				m, err := e.TemperatureLimitedMach(units.CelsiusToKelvin(c))
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "SAT %6.1f degC  M %.3f\n", c, m)
			}
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&staticC, "static", []float64{-65, -56.5, -45}, "static air temperatures, degC")
	return cmd
}

func newEnvelopeCommand(a *app) *cobra.Command {
	var cas, weightT float64
	var cond conditionFlags

	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Check a calibrated airspeed against the flight envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.cfg.LoadEnvelope()
			if err != nil {
				return err
			}
			h, t, err := cond.resolve(cmd)
			if err != nil {
				return err
			}
			res, err := a.conv.MachFromCalibratedAirspeed(units.KnotsToMetresPerSecond(cas), h, t)
			if err != nil {
				return err
			}
			as, err := e.Assess(res, units.TonnesToKilograms(weightT))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := printResult(w, res); err != nil {
				return err
			}
			fmt.Fprintf(w, "Mach limit        %.3f  margin %+.3f\n", as.MachLimit, as.MachMargin)
			fmt.Fprintf(w, "TAT limit         %.1f degC  margin %+.1f\n",
				units.KelvinToCelsius(as.TotalTemperatureLimit), as.TotalTemperatureMargin)
			fmt.Fprintf(w, "TAT limited Mach  %.3f\n", as.TemperatureLimitedMach)
			if as.HasCASLimit {
				fmt.Fprintf(w, "CAS limit         %.1f kt  margin %+.1f\n",
					units.MetresPerSecondToKnots(as.CASLimit), units.MetresPerSecondToKnots(as.CASMargin))
			}
			if as.Within() {
				fmt.Fprintln(w, "within envelope")
				return nil
			}
			names := make([]string, len(as.Exceeded))
			for i, l := range as.Exceeded {
				names[i] = l.String()
			}
			fmt.Fprintf(w, "exceeded: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
	cmd.Flags().Float64Var(&cas, "cas", 0, "calibrated airspeed, kt")
	cmd.Flags().Float64Var(&weightT, "weight", 0, "aircraft weight, t")
	cond.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("cas")
	_ = cmd.MarkFlagRequired("alt")
	return cmd
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

/*
Print a conversion the way a flight engineer reads it.

	Args:
	    w: output
	    res: conversion result
*/
func printResult(w io.Writer, res airdata.ConversionResult) error {
	isa, err := airdata.ISADeviation(res.Ambient.Altitude, res.Temperature)
	if err != nil {
		return err
	}
	if math.Abs(isa) < 0.05 {
		// keep "ISA+0.0" from printing as "ISA-0.0"
		isa = 0
	}
	_, err = fmt.Fprintf(w,
		"FL%.0f\n"+
			"CAS   %7.1f kt\n"+
			"OAT   %7.1f degC  ISA%+.1f\n"+
			"Mach  %7.4f  (%s; sea level %s, local %s)\n"+
			"TAS   %7.1f kt\n"+
			"TAT   %7.1f degC\n"+
			"dp/p  %7.5f  dp %.1f hPa\n",
		units.FlightLevel(res.Ambient.Altitude),
		units.MetresPerSecondToKnots(res.CalibratedAirspeed),
		units.KelvinToCelsius(res.Temperature), isa,
		res.Mach, res.Regime, res.SeaLevelRegime, res.LocalRegime,
		units.MetresPerSecondToKnots(res.TrueAirspeed),
		units.KelvinToCelsius(res.TotalTemperature),
		res.PressureRatio, units.PascalsToHectopascals(res.ImpactPressure),
	)
	return err
}
