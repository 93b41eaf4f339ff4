package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/integrators"
	"github.com/san-kum/seirsim/internal/metrics"
	"github.com/san-kum/seirsim/internal/models"
	"github.com/san-kum/seirsim/internal/solver"
	"github.com/san-kum/seirsim/internal/storage"
	"github.com/san-kum/seirsim/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   = slog.New(slog.DiscardHandler)

	days     int
	substeps int
	s0       float64
	i0       float64
	beta     float64
	rho      float64
	gamma    float64
	// Config file
	configFile string
	// Preset name
	preset string

	betas   string
	rhos    string
	gammas  string
	workers int
)

// main registers the seirsim commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "seirsim",
		Short:        "SEIR epidemic simulation with forward Euler",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".seirsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and save the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [substeps1] [substeps2] ...",
		Short: "compare sub-step counts on the same configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareSubsteps,
	}
	addModelFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve over a grid of beta/rho/gamma values",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&betas, "betas", "", "comma-separated beta values")
	sweepCmd.Flags().StringVar(&rhos, "rhos", "", "comma-separated rho values")
	sweepCmd.Flags().StringVar(&gammas, "gammas", "", "comma-separated gamma values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent solves (0 = GOMAXPROCS)")

	rootCmd.AddCommand(runCmd, listCmd, exportCSVCmd, exportJSONCmd, presetsCmd, compareCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&days, "days", config.DefaultDuration, "duration T in days")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "Euler sub-steps per day")
	cmd.Flags().Float64Var(&s0, "s0", config.DefaultS0, "initial susceptible")
	cmd.Flags().Float64Var(&i0, "i0", config.DefaultI0, "initial infectious")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "infection rate")
	cmd.Flags().Float64Var(&rho, "rho", config.DefaultRho, "mean latency duration")
	cmd.Flags().Float64Var(&gamma, "gamma", config.DefaultGamma, "mean infectious duration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, preset, config file and explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("days") {
		cfg.Duration = days
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("s0") {
		cfg.Initial.S0 = s0
	}
	if flags.Changed("i0") {
		cfg.Initial.I0 = i0
	}
	if flags.Changed("beta") {
		cfg.Params.Beta = beta
	}
	if flags.Changed("rho") {
		cfg.Params.Rho = rho
	}
	if flags.Changed("gamma") {
		cfg.Params.Gamma = gamma
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func solve(ctx context.Context, cfg *config.Config) (*solver.Result, error) {
	s := solver.New(models.NewSEIR(cfg.Params), integrators.NewEuler(),
		solver.WithLogger(logger),
		solver.WithMetrics(metrics.Default()...),
	)
	return s.Run(ctx, cfg.GetInitState(), solver.Config{
		Duration: cfg.Duration,
		Substeps: cfg.Substeps,
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger.Info("running simulation",
		"days", cfg.Duration,
		"substeps", cfg.Substeps,
		"beta", cfg.Params.Beta,
		"rho", cfg.Params.Rho,
		"gamma", cfg.Params.Gamma,
	)
	start := time.Now()

	result, err := solve(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Preset:   preset,
		Duration: cfg.Duration,
		Substeps: cfg.Substeps,
		S0:       cfg.Initial.S0,
		I0:       cfg.Initial.I0,
		Params:   cfg.Params,
	}, result)
	if err != nil {
		return err
	}

	if result.Frozen {
		logger.Warn("trajectory went negative and was frozen", "t", result.FrozenAt)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("rows: %d\n", len(result.States))
	fmt.Printf("frozen: %v\n", result.Frozen)
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Default() {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDAYS\tN\tBETA\tRHO\tGAMMA\tFROZEN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%g\t%g\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Substeps,
			run.Params.Beta,
			run.Params.Rho,
			run.Params.Gamma,
			run.Frozen,
		)
	}

	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.ExportCSV(os.Stdout, states, times)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, states, times)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDAYS\tN\tS0\tI0\tBETA\tRHO\tGAMMA")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%g\t%g\t%g\t%g\n",
			name, p.Duration, p.Substeps, p.Initial.S0, p.Initial.I0,
			p.Params.Beta, p.Params.Rho, p.Params.Gamma)
	}
	return w.Flush()
}

func compareSubsteps(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	counts := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid substep count: %q", arg)
		}
		counts = append(counts, n)
	}

	fmt.Printf("comparing sub-steps (days=%d, beta=%g, rho=%g, gamma=%g)\n\n",
		cfg.Duration, cfg.Params.Beta, cfg.Params.Rho, cfg.Params.Gamma)
	fmt.Printf("%-8s  %-10s  %-10s  %-10s  %-10s  %-10s  %-7s  %-8s\n",
		"n", "final_S", "final_E", "final_I", "final_R", "drift", "frozen", "time_ms")
	fmt.Println(strings.Repeat("-", 86))

	for _, n := range counts {
		run := *cfg
		run.Substeps = n

		start := time.Now()
		result, err := solve(cmd.Context(), &run)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-8d  error: %v\n", n, err)
			continue
		}

		final := result.States[len(result.States)-1]
		fmt.Printf("%-8d  %10.6f  %10.6f  %10.6f  %10.6f  %10.2e  %-7v  %8.2f\n",
			n, final[models.S], final[models.E], final[models.I], final[models.R],
			result.Metrics["population_drift"], result.Frozen,
			float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var grid sweep.Grid
	if grid.Betas, err = parseFloats(betas); err != nil {
		return fmt.Errorf("--betas: %w", err)
	}
	if grid.Rhos, err = parseFloats(rhos); err != nil {
		return fmt.Errorf("--rhos: %w", err)
	}
	if grid.Gammas, err = parseFloats(gammas); err != nil {
		return fmt.Errorf("--gammas: %w", err)
	}

	points, err := sweep.New(workers, logger).Run(cmd.Context(), *cfg, grid)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BETA\tRHO\tGAMMA\tPEAK_I\tPEAK_T\tATTACK\tFROZEN")
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%g\t%g\t%.6f\t%g\t%.4f\t%v\n",
			p.Params.Beta, p.Params.Rho, p.Params.Gamma,
			p.Metrics["peak_infected"], p.Metrics["peak_time"], p.Metrics["attack_rate"],
			p.Frozen,
		)
	}
	return w.Flush()
}

func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
