package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bouncesim/internal/analysis"
	"github.com/san-kum/bouncesim/internal/automation"
	"github.com/san-kum/bouncesim/internal/config"
	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/experiment"
	"github.com/san-kum/bouncesim/internal/gui"
	"github.com/san-kum/bouncesim/internal/optim"
	"github.com/san-kum/bouncesim/internal/sim"
	"github.com/san-kum/bouncesim/internal/storage"
	"github.com/san-kum/bouncesim/internal/stream"
	"github.com/san-kum/bouncesim/internal/viz"
)

var (
	dataDir     string
	configFile  string
	envFile     string
	duration    float64
	seed        int64
	integrator  string
	broadphase  string
	gravity     float64
	restitution float64
	substeps    int
	frameRate   int
	withAudio   bool
	addr        string
	outFile     string
	series      string
	runs        int
	sweepParam  string
	sweepLo     float64
	sweepHi     float64
	sweepSteps  int
	nudge       float64
	binWidth    float64
	metricName  string
	maximize    bool
	tuneParams  []string
	progress    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bouncesim",
		Short: "colored balls bouncing inside a ring",
		RunE:  runMenu,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bouncesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml), overrides the scene preset")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file with BOUNCESIM_* overrides")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&progress, "progress", false, "print the population once per simulated second")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().BoolVar(&withAudio, "audio", false, "play a note per collision")

	guiCmd := &cobra.Command{
		Use:   "gui [scene]",
		Short: "run a scene in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	addSceneFlags(guiCmd)
	guiCmd.Flags().BoolVar(&withAudio, "audio", false, "play a note per collision")

	serveCmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "stream a scene to websocket viewers",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	addSceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot population and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	scatterCmd := &cobra.Command{
		Use:   "scatter [run_id]",
		Short: "draw the final snapshot of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  scatterRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "collision-rate spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&binWidth, "bin", 0.05, "event-rate bin width in seconds")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "population versus gravity or restitution",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "restitution", "gravity or restitution")
	sweepCmd.Flags().Float64Var(&sweepLo, "from", 0.9, "first value")
	sweepCmd.Flags().Float64Var(&sweepHi, "to", 1.1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 20, "number of values")
	sweepCmd.Flags().Float64Var(&duration, "time", 10.0, "seconds recorded per value")

	divergeCmd := &cobra.Command{
		Use:   "diverge [scene]",
		Short: "how fast a nudged copy of a scene drifts away",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDivergence,
	}
	divergeCmd.Flags().Float64Var(&nudge, "nudge", 1e-6, "initial offset of the first body")
	divergeCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final snapshot or a series as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&series, "series", "", "plot a series instead: bodies, energy or collisions")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-8s %s\n", name, config.Describe(name))
			}
			return nil
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted list of scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search one metric over scene parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "max", false, "maximize instead of minimize")
	tuneCmd.Flags().StringSliceVar(&tuneParams, "param", []string{"restitution=0.95,1.0,1.05"}, "name=v1,v2,... (repeatable)")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "run independent copies of a scene in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, serveCmd, listCmd, plotCmd, scatterCmd, analyzeCmd,
		sweepCmd, divergeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, scenarioCmd, tuneCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration in seconds")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator")
	cmd.Flags().StringVar(&broadphase, "broadphase", "allpairs", "broad phase")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "downward acceleration")
	cmd.Flags().Float64Var(&restitution, "restitution", config.DefaultRestitution, "body-body restitution")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "sub-steps per frame")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frames per second")
}

func sceneName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "trio"
}

// loadScene resolves a scene: preset (or --config file), then env
// overrides, then any flag set explicitly on the command line.
func loadScene(cmd *cobra.Command, name string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	} else {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scene: %s (available: %v)", name, config.ListPresets())
		}
	}

	config.LoadEnv(envFile)
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("broadphase") {
		cfg.BroadPhase = broadphase
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("restitution") {
		cfg.Restitution = restitution
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	cfg, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics(cfg.Gravity)); err != nil {
		return err
	}
	if progress {
		exp.Simulator().AddObserver(&progressPrinter{out: os.Stdout})
	}

	fmt.Printf("running %s...\n", scene)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Scene:      scene,
		Seed:       cfg.Seed,
		FrameDt:    cfg.FrameDt(),
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		BroadPhase: cfg.BroadPhase,
		Params:     cfg.Params(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("sub-steps: %d\n", result.StepsTaken)
	fmt.Printf("events: %d\n", len(result.Events))
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedMetricNames(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func runMenu(cmd *cobra.Command, args []string) error {
	scenes := make([]viz.SceneInfo, 0)
	for _, name := range config.ListPresets() {
		scenes = append(scenes, viz.SceneInfo{Name: name, Description: config.Describe(name)})
	}
	open := func(name string) (viz.Model, error) {
		cfg, err := loadScene(cmd, name)
		if err != nil {
			return viz.Model{}, err
		}
		return viz.NewModel(sceneBuilder(cfg, nil), name, cfg.FPS)
	}

	p := tea.NewProgram(viz.NewMenu(scenes, open), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	cfg, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}

	var voice *audioOut
	if withAudio {
		if voice, err = newAudioOut(cfg); err != nil {
			return err
		}
		defer voice.Close()
	}

	model, err := viz.NewModel(sceneBuilder(cfg, voice), scene, cfg.FPS)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	cfg, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}

	opts := gui.Options{
		Width:  int(cfg.Boundary.X * 2),
		Height: int(cfg.Boundary.Y * 2),
		FPS:    cfg.FPS,
		Title:  "bouncesim - " + scene,
	}
	var voice *audioOut
	if withAudio {
		song, policy, err := loadSong(cfg)
		if err != nil {
			return err
		}
		voice = &audioOut{song: song, policy: policy, synth: newSynth(cfg, song)}
		opts.Synth = voice.synth
	}
	return gui.Run(gui.Builder(sceneBuilder(cfg, voice)), opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	cfg, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}

	srv, err := stream.NewServer(stream.Builder(sceneBuilder(cfg, nil)), scene, cfg.FPS)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Printf("streaming %s on %s (ws://localhost%s/ws)\n", scene, addr, addr)
	return srv.Run(ctx, addr)
}

// sceneBuilder returns a closure that builds a fresh simulator for cfg each
// time it is called, seeded the same way, with the note sequencer attached
// when audio is on.
func sceneBuilder(cfg *config.Config, voice *audioOut) func() (*sim.Simulator, error) {
	registry := experiment.NewRegistry()
	return func() (*sim.Simulator, error) {
		s, err := experiment.Build(cfg, registry, newRand(cfg.Seed))
		if err != nil {
			return nil, err
		}
		if voice != nil {
			s.AddListener(voice.Sequencer())
		}
		return s, nil
	}
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tSUBSTEPS\tINTEG\tBROAD\tFINAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\t%s\t%.0f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Params.Substeps,
			run.Integrator,
			run.BroadPhase,
			run.Metrics["population"],
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
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", len(frames))

	for _, name := range []string{"bodies", "energy", "collisions"} {
		fmt.Println(asciigraph.Plot(frameSeries(frames, name),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs frame"),
		))
		fmt.Println()
	}
	return nil
}

func frameSeries(frames []dynamo.Frame, name string) []float64 {
	data := make([]float64, len(frames))
	for i, f := range frames {
		switch name {
		case "bodies":
			data[i] = float64(f.Bodies)
		case "energy":
			data[i] = f.Energy
		case "momentum":
			data[i] = f.Momentum
		case "collisions":
			data[i] = float64(f.Collisions)
		}
	}
	return data
}

func scatterRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	final, err := st.LoadFinal(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("final snapshot of %s: %d bodies\n\n", meta.ID, len(final))
	fmt.Print(analysis.ScatterToASCII(analysis.SnapshotScatter(final), meta.Params.Boundary, 60, 30))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no collisions recorded")
	}

	rate := analysis.EventRate(events, binWidth, meta.Duration)
	ps := analysis.PowerSpectrum(rate)
	if len(ps) < 2 {
		return fmt.Errorf("run too short for a spectrum")
	}

	fmt.Printf("run: %s (%d events)\n\n", meta.ID, len(events))
	fmt.Println(asciigraph.Plot(rate,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("collisions per bin"),
	))
	fmt.Println()

	plot := ps[1:]
	if len(plot) > 80 {
		plot = plot[:80]
	}
	fmt.Println(asciigraph.Plot(plot,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum of the collision rate"),
	))

	freq, power := analysis.DominantFrequency(rate, binWidth)
	fmt.Printf("\ndominant frequency: %.3f Hz (power %.3f)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1/freq)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	base, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}
	if sweepParam != "gravity" && sweepParam != "restitution" {
		return fmt.Errorf("unknown sweep parameter: %s", sweepParam)
	}

	registry := experiment.NewRegistry()
	build := func(v float64) (*sim.Simulator, error) {
		cfg := *base
		if sweepParam == "gravity" {
			cfg.Gravity = v
		} else {
			cfg.Restitution = v
		}
		return experiment.Build(&cfg, registry, newRand(cfg.Seed))
	}

	fmt.Printf("sweeping %s of %s from %.3f to %.3f...\n", sweepParam, scene, sweepLo, sweepHi)
	points, err := analysis.Sweep(context.Background(), build, sweepLo, sweepHi, sweepSteps, base.FrameDt(), 1.0, duration)
	if err != nil {
		return err
	}

	fmt.Print(analysis.SweepToASCII(points, 80, 20))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL\tPEAK\tCOLLISIONS\n", sweepParam)
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%d\t%d\t%d\n", p.Param, p.FinalBodies, p.PeakBodies, p.Collisions)
	}
	return w.Flush()
}

func runDivergence(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	cfg, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}

	rate, err := analysis.DivergenceRate(context.Background(), sceneBuilder(cfg, nil), nudge, cfg.FrameDt(), cfg.Duration)
	if err != nil {
		return err
	}
	fmt.Printf("%s: divergence rate %.4f per second\n", scene, rate)
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	cfg, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s: %d runs of %.1fs\n", scene, runs, cfg.Duration)
	start := time.Now()
	results, err := experiment.Ensemble(context.Background(), cfg, experiment.NewRegistry(), runs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	steps, events := 0, 0
	for _, r := range results {
		steps += r.StepsTaken
		events += len(r.Events)
	}
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("sub-steps: %d (%.0f/s)\n", steps, float64(steps)/elapsed.Seconds())
	fmt.Printf("events: %d\n", events)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %s\n", scenario.Name, scenario.Description)
	results, err := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry(), st)
	for _, r := range results {
		fmt.Printf("  %-8s events %-6d final %-4.0f %s\n", r.Step.Scene, len(r.Result.Events), r.Result.Metrics["population"], r.RunID)
	}
	return err
}

// parseGrid turns "name=v1,v2,..." flags into search axes.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	scene := sceneName(args)
	cfg, err := loadScene(cmd, scene)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(tuneParams)
	if err != nil {
		return err
	}

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize
	best, val, err := g.Search(context.Background(), cfg, experiment.NewRegistry(), metricName)
	if err != nil {
		return err
	}

	fmt.Printf("best %s for %s: %.6f\n", metricName, scene, val)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}
