// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		flags      Config
	)

	rootCmd := &cobra.Command{
		Use:          "ndhull",
		Short:        "Convex hulls, Delaunay triangulations and Voronoi diagrams of point sets",
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.Float64VarP(&flags.Scale, "scale", "s", 0, "coordinate scale before snapping to integers (0 picks one)")
	pf.IntVarP(&flags.Improve, "improve", "i", 0, "edge-flip passes for planar triangulations")
	pf.StringVarP(&flags.Format, "format", "f", "json", "output format: json, geojson or svg")
	pf.StringVarP(&flags.Output, "output", "o", "", "output file (default stdout)")
	pf.StringVar(&flags.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")

	// load merges the config file with the flags set on the command line.
	load := func(cmd *cobra.Command) (Config, error) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return Config{}, err
		}
		changed := cmd.Flags().Changed
		if changed("scale") {
			cfg.Scale = flags.Scale
		}
		if changed("improve") {
			cfg.Improve = flags.Improve
		}
		if changed("format") {
			cfg.Format = flags.Format
		}
		if changed("output") {
			cfg.Output = flags.Output
		}
		if changed("log-level") {
			cfg.LogLevel = flags.LogLevel
		}
		return cfg, cfg.validate()
	}

	rootCmd.AddCommand(
		pipelineCmd("triangulate [input]", "Compute the Delaunay triangulation of the input points", load, runTriangulate),
		pipelineCmd("hull [input]", "Compute the convex hull facets of the input points", load, runHull),
		pipelineCmd("voronoi [input]", "Compute the Voronoi diagram of planar or spatial input points", load, runVoronoi),
		pipelineCmd("validate [input]", "Triangulate the input points and check the result for consistency", load, runValidate),
	)
	return rootCmd
}

type runFunc func(env *runEnv, samples [][]float64) error

func pipelineCmd(use, short string, load func(*cobra.Command) (Config, error), run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return execute(cmd, cfg, path, run)
		},
	}
}
