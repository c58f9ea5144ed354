package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sysflow/internal/builtin"
	"sysflow/internal/config"
	"sysflow/internal/loops"
	"sysflow/internal/sim"
	"sysflow/internal/storage"
	"sysflow/internal/units"
	"sysflow/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	preset     string
	configFile string
	setParams  []string
	seriesFlag []string
	timeUnit   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sysflow",
		Short: "stock and flow simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sysflow", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a model and save the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runModel,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default: model's own)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration (default: model's own)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringArrayVar(&setParams, "set", nil, "override parameter, name=value")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringArrayVar(&seriesFlag, "series", nil, "series to plot (default: all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run a model with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&duration, "time", 0, "duration (default: model's own)")
	liveCmd.Flags().StringArrayVar(&setParams, "set", nil, "override parameter, name=value")

	loopsCmd := &cobra.Command{
		Use:   "loops [model]",
		Short: "show the feedback loops of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  showLoops,
	}

	lintCmd := &cobra.Command{
		Use:   "lint [model]",
		Short: "check a model for ordering and unit problems",
		Args:  cobra.ExactArgs(1),
		RunE:  lintModel,
	}
	lintCmd.Flags().StringVar(&timeUnit, "time-unit", "day", "time unit for dimensional checks")

	rootCmd.AddCommand(runCmd, modelsCmd, presetsCmd, listCmd, plotCmd,
		exportCmd, exportCSVCmd, liveCmd, loopsCmd, lintCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseSet turns repeated name=value flags into a parameter map.
func parseSet(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("bad --set %q, want name=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --set %q: %w", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

// resolveRun merges preset, config file, and flags into the final run
// settings. Explicit flags win over the config file, which wins over the
// preset, which wins over the model's own defaults.
func resolveRun(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg, err := config.ForModel(model)
	if err != nil {
		return nil, err
	}

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg.Dt = p.Dt
		cfg.Duration = p.Duration
		cfg.Params = make(map[string]float64, len(p.Params))
		for k, v := range p.Params {
			cfg.Params[k] = v
		}
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if fileCfg.Model != "" && fileCfg.Model != model {
			return nil, fmt.Errorf("config is for model %q, not %q", fileCfg.Model, model)
		}
		if fileCfg.Dt > 0 {
			cfg.Dt = fileCfg.Dt
		}
		if fileCfg.Duration > 0 {
			cfg.Duration = fileCfg.Duration
		}
		for k, v := range fileCfg.Params {
			if cfg.Params == nil {
				cfg.Params = make(map[string]float64)
			}
			cfg.Params[k] = v
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}

	overrides, err := parseSet(setParams)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[k] = v
	}
	return cfg, nil
}

func runModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	cfg, err := resolveRun(cmd, model)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := builtin.BuildAt(model, cfg.Params, cfg.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", model)
	start := time.Now()

	if err := s.RunContext(context.Background(), cfg.Duration); err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(model, s.Timestep(), cfg.Duration, s.Results())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", s.StepCount())
	fmt.Println("\nfinal values:")
	res := s.Results()
	last := res.Len() - 1
	for _, name := range res.Names() {
		v, _ := res.Value(last, name)
		fmt.Printf("  %s: %.6f\n", name, v)
	}
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDT\tDURATION\tDESCRIPTION")
	for _, name := range builtin.Names() {
		e, err := builtin.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.0f\t%s\n", e.Name, e.Dt, e.Duration, e.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nexpected behavior:")
	for _, name := range builtin.Names() {
		e, _ := builtin.Get(name)
		for _, mode := range e.Modes {
			fmt.Printf("  %s: %s\n", name, mode)
		}
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4f\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, names, rows, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(rows))

	wanted := seriesFlag
	if len(wanted) == 0 {
		wanted = names
	}
	for _, want := range wanted {
		col := -1
		for j, name := range names {
			if name == want {
				col = j
				break
			}
		}
		if col < 0 {
			fmt.Printf("no series %q in run\n", want)
			continue
		}
		data := make([]float64, len(rows))
		for i := range rows {
			data[i] = rows[i][col]
		}
		fmt.Println(viz.PlotSeries(data, want, 10))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, names, rows, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	for i := range rows {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range rows[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	model := args[0]

	e, err := builtin.Get(model)
	if err != nil {
		return err
	}
	runFor := e.Duration
	if cmd.Flags().Changed("time") {
		runFor = duration
	}
	overrides, err := parseSet(setParams)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(func() (*sim.Simulation, error) {
		return builtin.Build(model, overrides)
	}, model, runFor)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func showLoops(cmd *cobra.Command, args []string) error {
	s, err := builtin.Build(args[0], nil)
	if err != nil {
		return err
	}

	structure := loops.Analyze(s)
	if len(structure.Loops) == 0 {
		fmt.Println("no feedback loops found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tPATH")
	for _, l := range structure.Loops {
		fmt.Fprintf(w, "%s\t%s\n", l.Kind(), strings.Join(l.Path, " -> "))
	}
	return w.Flush()
}

func lintModel(cmd *cobra.Command, args []string) error {
	s, err := builtin.Build(args[0], nil)
	if err != nil {
		return err
	}

	clean := true

	warnings, orderErr := loops.CheckAuxOrder(s)
	for _, warning := range warnings {
		clean = false
		fmt.Printf("warning: %s\n", warning)
	}
	if orderErr != nil {
		clean = false
		fmt.Printf("error: %v\n", orderErr)
	}

	if err := units.CheckModel(units.NewRegistry(), s, timeUnit); err != nil {
		clean = false
		fmt.Printf("error: %v\n", err)
	}

	if clean {
		fmt.Println("no problems found")
	}
	return nil
}
