package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lagrange/internal/automation"
	"github.com/san-kum/lagrange/internal/config"
	"github.com/san-kum/lagrange/internal/viz"
)

var dumpPreset string

func presetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list presets, or print one as YAML with --dump",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			systems := registry.ListSystems()
			if len(args) == 1 {
				systems = args[:1]
			}

			if dumpPreset != "" {
				if len(args) != 1 {
					return fmt.Errorf("--dump needs a system")
				}
				cfg := config.GetPreset(args[0], dumpPreset)
				if cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", dumpPreset, config.ListPresets(args[0]))
				}
				enc := yaml.NewEncoder(os.Stdout)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(cfg)
			}

			for _, system := range systems {
				names := config.ListPresets(system)
				if names == nil {
					continue
				}
				fmt.Println(viz.Title.Render(system))
				for _, name := range names {
					p := config.GetPreset(system, name)
					fmt.Printf("  %-10s %s\n", name, viz.Subtle.Render(fmt.Sprintf("%gs, x0=%v", p.Duration, p.Initial)))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dumpPreset, "dump", "", "print this preset as a config file")
	return cmd
}

func scenarioCmd() *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch of simulations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			runner := &automation.Runner{
				Registry:  registry,
				Collector: collector,
				Logger:    logger(cmd),
				BaseDir:   filepath.Dir(args[0]),
			}
			if !noStore {
				if runner.Store, err = openStore(); err != nil {
					return err
				}
			}

			results, err := runner.Run(cmd.Context(), sc)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tSYSTEM\tSAMPLES\tRUN\tOUTPUT")
			for _, r := range results {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.Step, r.System, r.Result.Trajectory.Len(), r.RunID, r.Output)
			}
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "ignore save: in steps")
	return cmd
}

func systemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "list simulated systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kv [][2]string
			for _, name := range registry.ListSystems() {
				entry, _ := registry.Lookup(name)
				kv = append(kv, [2]string{name, entry.Description})
			}
			fmt.Println(viz.KeyValues(kv))
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	var (
		param    string
		from, to float64
		steps    int
	)
	cmd := &cobra.Command{
		Use:   "sweep [system]",
		Short: "run a system across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args[0])
			if err != nil {
				return err
			}
			runner := &automation.Runner{
				Registry:  registry,
				Collector: collector,
				Logger:    logger(cmd),
			}
			results, err := runner.Sweep(cmd.Context(), &automation.ParameterSweep{
				Base:      cfg,
				ParamName: param,
				ParamMin:  from,
				ParamMax:  to,
				NumSteps:  steps,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tPERIOD\tE_MIN\tE_MAX\tFINAL\n", param)
			for _, r := range results {
				fmt.Fprintf(w, "%.4g\t%.5f\t%.6g\t%.6g\t%.4g\n", r.ParamValue, r.Period, r.MinEnergy, r.MaxEnergy, r.FinalState)
			}
			return w.Flush()
		},
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&param, "vary", "length", "parameter to vary")
	cmd.Flags().Float64Var(&from, "from", 0.5, "first value")
	cmd.Flags().Float64Var(&to, "to", 2, "last value")
	cmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	return cmd
}
