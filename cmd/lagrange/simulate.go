package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/lagrange/internal/config"
	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/experiment"
	"github.com/san-kum/lagrange/internal/kinematics"
	"github.com/san-kum/lagrange/internal/logging"
	"github.com/san-kum/lagrange/internal/render"
	"github.com/san-kum/lagrange/internal/viz"
)

var (
	duration   float64
	fps        float64
	speed      float64
	integrator string
	relTol     float64
	absTol     float64
	initial    []float64
	params     map[string]string
	singular   float64

	width   int
	color   string
	trail   int
	members int
	delta   float64
	index   int
	palette string
	workers int

	outPath   string
	plotsDir  string
	panelName string
	dashboard bool
	play      bool
	frame     int
	at        float64
	cols      int
	rows      int
	theme     string
)

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml)")
	f.StringVar(&preset, "preset", "", "named preset for the system")
	cmd.MarkFlagsMutuallyExclusive("config", "preset")

	f.Float64Var(&duration, "duration", config.DefaultDuration, "simulated seconds")
	f.Float64Var(&fps, "fps", config.DefaultFPS, "output samples per second of playback")
	f.Float64Var(&speed, "speed", config.DefaultSpeed, "playback speed (<1 is slow motion)")
	f.StringVar(&integrator, "integrator", "rk45", "integrator (rk45, rk4)")
	f.Float64Var(&relTol, "rtol", config.DefaultRelTol, "relative tolerance")
	f.Float64Var(&absTol, "atol", config.DefaultAbsTol, "absolute tolerance")
	f.Float64SliceVar(&initial, "initial", nil, "initial state, comma separated (radians)")
	f.StringToStringVar(&params, "param", nil, "system parameter name=value, repeatable")
	f.Float64Var(&singular, "singular-tol", 0, "fail when the mass-matrix denominator drops below this (0 disables)")
}

func addRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&width, "width", config.DefaultWidth, "frame width in pixels")
	f.StringVar(&color, "color", "", "mechanism colour (#rrggbb)")
	f.IntVar(&trail, "trail", 0, "trace this many past samples of the last mass")
}

// resolveConfig layers defaults, then preset or config file, then flags
// the user set explicitly.
func resolveConfig(cmd *cobra.Command, system string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		if cfg = config.GetPreset(system, preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(system))
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
		if system != "" && cfg.System != system {
			return nil, fmt.Errorf("config %s is for %s, not %s", configFile, cfg.System, system)
		}
	default:
		cfg = config.DefaultConfig()
		cfg.System = system
	}

	f := cmd.Flags()
	changed := func(name string) bool {
		return f.Lookup(name) != nil && f.Changed(name)
	}
	if changed("duration") {
		cfg.Duration = duration
	}
	if changed("fps") {
		cfg.FPS = fps
	}
	if changed("speed") {
		cfg.Speed = speed
	}
	if changed("integrator") {
		cfg.Integrator = integrator
	}
	if changed("rtol") {
		cfg.RelTol = relTol
	}
	if changed("atol") {
		cfg.AbsTol = absTol
	}
	if changed("initial") {
		cfg.Initial = append([]float64(nil), initial...)
	}
	if changed("param") {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		for k, v := range params {
			val, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", k, err)
			}
			cfg.Params[k] = val
		}
	}
	if changed("singular-tol") {
		cfg.SingularTol = singular
	}
	if changed("width") {
		cfg.Render.Width = width
	}
	if changed("color") {
		cfg.Render.Color = color
	}
	if changed("trail") {
		cfg.Render.Trail = trail
	}
	if changed("panel") {
		cfg.Render.Panel = panelName
	}
	if changed("dashboard") && dashboard {
		cfg.Render.Panel = "dashboard"
	}
	if changed("members") {
		cfg.Ensemble.Members = members
	}
	if changed("delta") {
		cfg.Ensemble.Delta = config.Deg(delta)
	}
	if changed("index") {
		cfg.Ensemble.Index = index
	}
	if changed("palette") {
		cfg.Ensemble.Palette = palette
	}
	if changed("workers") {
		cfg.Ensemble.Workers = workers
	}
	return cfg, cfg.Validate()
}

func newExperiment(cmd *cobra.Command, system string) (*experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd, system)
	if err != nil {
		return nil, err
	}
	exp, err := experiment.New(registry, cfg,
		experiment.WithLogger(logger(cmd)),
		experiment.WithCollector(collector))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func simulationCommands() []*cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "integrate a system and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	renderCmd := &cobra.Command{
		Use:   "render [system]",
		Short: "integrate a system and write an animation or still",
		Long: "The output format follows --out: .gif, .mp4/.mov/.mkv/.webm (needs ffmpeg), " +
			"an image extension for a single frame, or no extension for a directory of PNG frames.",
		Args: cobra.ExactArgs(1),
		RunE: renderSimulation,
	}
	addSimFlags(renderCmd)
	addRenderFlags(renderCmd)
	renderCmd.Flags().StringVar(&outPath, "out", "", "output path (default <system>.gif)")
	renderCmd.Flags().StringVar(&plotsDir, "plots", "", "also write time-series, phase and HTML charts here")
	renderCmd.Flags().IntVar(&frame, "frame", 0, "sample to draw when --out is an image")
	renderCmd.Flags().StringVar(&panelName, "panel", "", "animation content: mechanism, timeseries, phase or dashboard")
	renderCmd.Flags().BoolVar(&dashboard, "dashboard", false, "same as --panel dashboard")
	renderCmd.MarkFlagsMutuallyExclusive("panel", "dashboard")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [system]",
		Short: "animate many members with one initial component perturbed",
		Args:  cobra.ExactArgs(1),
		RunE:  renderEnsemble,
	}
	addSimFlags(ensembleCmd)
	addRenderFlags(ensembleCmd)
	ensembleCmd.Flags().StringVar(&outPath, "out", "", "output path (default <system>_ensemble.gif)")
	ensembleCmd.Flags().IntVar(&members, "members", config.DefaultMembers, "ensemble size")
	ensembleCmd.Flags().Float64Var(&delta, "delta", 0.5, "total perturbation in degrees")
	ensembleCmd.Flags().IntVar(&index, "index", 2, "state component to perturb")
	ensembleCmd.Flags().StringVar(&palette, "palette", "greens", "member colours (greens, rainbow)")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "parallel integrations (0 = GOMAXPROCS)")

	previewCmd := &cobra.Command{
		Use:   "preview [system]",
		Short: "draw one sample in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  previewSimulation,
	}
	addSimFlags(previewCmd)
	previewCmd.Flags().Float64Var(&at, "at", 0, "simulated time to draw")
	previewCmd.Flags().IntVar(&cols, "cols", 60, "preview width in terminal cells")
	previewCmd.Flags().IntVar(&rows, "rows", 20, "preview height in terminal cells")
	previewCmd.Flags().StringVar(&theme, "theme", "minimal", fmt.Sprintf("colour theme %v", viz.ThemeNames()))
	previewCmd.Flags().BoolVar(&play, "play", false, "replay the whole run in the terminal at --fps")
	previewCmd.MarkFlagsMutuallyExclusive("play", "at")

	return []*cobra.Command{runCmd, renderCmd, ensembleCmd, previewCmd}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	runID, err := st.Save(exp.Metadata(res), res.Trajectory)
	if err != nil {
		return err
	}
	logger(cmd).Info(cmd.Context(), "run stored", logging.String("id", runID))

	printSummary(exp, res, runID)
	return nil
}

func printSummary(exp *experiment.Experiment, res *experiment.Result, runID string) {
	tr := res.Trajectory
	stats := tr.Stats()
	kv := [][2]string{
		{"run", runID},
		{"system", exp.Config().System},
		{"samples", strconv.Itoa(tr.Len())},
		{"span", tr.Span().String()},
		{"evaluations", strconv.Itoa(stats.Evaluations)},
		{"steps", fmt.Sprintf("%d accepted, %d rejected", stats.Accepted, stats.Rejected)},
		{"elapsed", res.Elapsed.String()},
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		kv = append(kv, [2]string{name, fmt.Sprintf("%.6g", res.Metrics[name])})
	}

	fmt.Println(viz.Title.Render(exp.Entry().Description))
	fmt.Println(viz.Panel.Render(viz.KeyValues(kv)))
	fmt.Println(viz.Subtle.Render(exp.Entry().Labels[0]) + " " + viz.Sparkline(tr.Column(0), 60))
}

func renderSimulation(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	tr := res.Trajectory
	log := logger(cmd)

	out := outPath
	if out == "" {
		out = args[0] + ".gif"
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png", ".jpg", ".jpeg", ".svg", ".pdf", ".eps", ".tif", ".tiff":
		if err := exp.Still(tr, frame, out); err != nil {
			return err
		}
	default:
		if err := exp.Animate(cmd.Context(), tr, out, collector.FrameCounter(out)); err != nil {
			return err
		}
	}
	log.Info(cmd.Context(), "rendered", logging.String("out", out), logging.Int("frames", tr.Len()))

	if plotsDir != "" {
		if err := os.MkdirAll(plotsDir, 0755); err != nil {
			return err
		}
		paths, err := exp.Plots(tr, plotsDir)
		if err != nil {
			return err
		}
		log.Info(cmd.Context(), "plots written", logging.Any("paths", paths))
	}
	fmt.Println(out)
	return nil
}

func renderEnsemble(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ens, err := exp.RunEnsemble(ctx)
	if err != nil {
		return err
	}
	cfg := exp.Config()
	scene, err := ens.Scene(cfg.Render.Width, cfg.Render.Pad)
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = args[0] + "_ensemble.gif"
	}
	enc, err := render.NewEncoder(ctx, out, cfg.FPS)
	if err != nil {
		return err
	}
	if err := ens.Render(ctx, scene, enc, collector.FrameCounter(out)); err != nil {
		return err
	}
	logger(cmd).Info(ctx, "rendered ensemble",
		logging.String("out", out),
		logging.Int("members", ens.Len()),
		logging.Int("frames", ens.Samples()))
	fmt.Println(out)
	return nil
}

func previewSimulation(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	tr := res.Trajectory
	scene := exp.Scene(tr)
	th := viz.GetTheme(theme)

	if play {
		frames := viz.ReplayFrames(tr, exp.Mapper(), scene.Min, scene.Max, cols, rows, th)
		r, err := viz.NewReplay(args[0], tr.Times(), frames, exp.Config().FPS, th)
		if err != nil {
			return err
		}
		_, err = tea.NewProgram(r, tea.WithContext(cmd.Context())).Run()
		return err
	}

	i := nearestSample(tr, at)
	cfg := exp.Mapper().Map(tr.State(i), tr.Time(i))
	canvas := viz.Preview(cfg, scene.Min, scene.Max, cols, rows)

	var path []kinematics.Point
	for j := 0; j <= i; j++ {
		if masses := exp.Mapper().Map(tr.State(j), tr.Time(j)).Masses(); len(masses) > 0 {
			path = append(path, masses[len(masses)-1])
		}
	}
	viz.Trace(canvas, path)

	fmt.Println(th.Heading(fmt.Sprintf("%s  t = %.3f s", args[0], tr.Time(i))))
	fmt.Print(th.Paint(canvas))
	return nil
}

func nearestSample(tr *dynamo.Trajectory, t float64) int {
	best, bestDist := 0, math.Inf(1)
	for i := 0; i < tr.Len(); i++ {
		if d := math.Abs(tr.Time(i) - t); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
