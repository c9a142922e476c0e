// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/2dChan/ndhull"
	"github.com/2dChan/ndhull/delaunay"
	"github.com/2dChan/ndhull/hull"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runEnv struct {
	cfg   Config
	scale float64
	log   *zap.Logger
	out   io.Writer
}

func execute(cmd *cobra.Command, cfg Config, path string, run runFunc) (err error) {
	log, err := cfg.logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	in := cmd.InOrStdin()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in = f
	}
	samples, err := readSamples(in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Output != "" {
		f, ferr := os.Create(cfg.Output)
		if ferr != nil {
			return errors.Wrap(ferr, "creating output")
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}

	scale := cfg.Scale
	if scale == 0 {
		scale = hull.AutoScale(samples)
		log.Debug("picked scale", zap.Float64("scale", scale))
	}
	return run(&runEnv{cfg: cfg, scale: scale, log: log, out: out}, samples)
}

func (env *runEnv) improvePasses(dim int) int {
	if env.cfg.Improve > 0 && dim != 2 {
		env.log.Warn("improve only applies to planar input; skipped", zap.Int("dim", dim))
		return 0
	}
	return env.cfg.Improve
}

func runTriangulate(env *runEnv, samples [][]float64) error {
	dt, err := delaunay.New(samples, env.scale,
		delaunay.WithLogger(env.log),
		delaunay.WithImprovePasses(env.improvePasses(len(samples))))
	if err != nil {
		return errors.Wrap(err, "triangulating")
	}

	if env.cfg.Format == "json" {
		return writeJSON(env.out, triangulationOutput{
			Dim:       dt.Dim(),
			Simplexes: dt.Simplexes,
			Neighbors: dt.Neighbors,
			Edges:     dt.Edges,
			NumEdges:  dt.NumEdges,
		})
	}
	shapes := make([]shape, len(dt.Simplexes))
	for i := range dt.Simplexes {
		shapes[i] = shape{
			pts:    dt.SimplexVertices(i),
			closed: true,
			props:  map[string]any{"simplex": i},
		}
	}
	return env.writeShapes(shapes, samples)
}

func runHull(env *runEnv, samples [][]float64) error {
	res, err := hull.Compute(samples, env.scale,
		hull.WithMode(hull.ConvexHull),
		hull.WithLogger(env.log))
	if err != nil {
		return errors.Wrap(err, "computing hull")
	}

	if env.cfg.Format == "json" {
		return writeJSON(env.out, hullOutput{
			Dim:    res.Dim,
			Facets: res.Simplexes,
			Stats:  res.Stats,
		})
	}
	shapes := make([]shape, len(res.Simplexes))
	for i, f := range res.Simplexes {
		pts := make([][]float64, len(f))
		for j, v := range f {
			pts[j] = point(samples, v)
		}
		shapes[i] = shape{pts: pts, props: map[string]any{"facet": i}}
	}
	return env.writeShapes(shapes, samples)
}

func runVoronoi(env *runEnv, samples [][]float64) error {
	d, err := ndhull.NewDiagram(samples, env.scale,
		ndhull.WithLogger(env.log),
		ndhull.WithImprovePasses(env.improvePasses(len(samples))))
	if err != nil {
		return errors.Wrap(err, "computing diagram")
	}

	out := voronoiOutput{
		Dim:      d.Dim(),
		Vertices: d.Vertices,
		Cells:    make([]cellOutput, d.NumCells()),
	}
	var shapes []shape
	for i := range d.NumCells() {
		c, err := d.Cell(i)
		if err != nil {
			return err
		}
		out.Cells[i] = cellOutput{
			Site:      i,
			Vertices:  c.VertexIndices(),
			Neighbors: c.NeighborIndices(),
			Bounded:   c.Bounded(),
		}
		if !c.Bounded() {
			continue
		}
		pts := make([][]float64, 0, c.NumVertices())
		for _, v := range c.VertexIndices() {
			pts = append(pts, d.Vertices[v])
		}
		shapes = append(shapes, shape{pts: pts, closed: true, props: map[string]any{"site": i}})
	}

	if env.cfg.Format == "json" {
		return writeJSON(env.out, out)
	}
	return env.writeShapes(shapes, samples)
}

func runValidate(env *runEnv, samples [][]float64) error {
	res, err := hull.Compute(samples, env.scale, hull.WithLogger(env.log))
	if err != nil {
		return errors.Wrap(err, "triangulating")
	}
	dt := &delaunay.Triangulation{
		Samples:   samples,
		Simplexes: res.Simplexes,
		Vertices:  res.Vertices,
	}
	verr := dt.Finish()
	if verr == nil {
		verr = dt.Validate()
	}

	printStats(env.out, dt, res.Stats)
	if verr != nil {
		fmt.Fprintf(env.out, "Result: INVALID (%v)\n", verr)
		return errors.New("triangulation is invalid")
	}
	fmt.Fprintln(env.out, "Result: VALID")
	return nil
}

func (env *runEnv) writeShapes(shapes []shape, samples [][]float64) error {
	if len(samples) != 2 {
		return errors.Errorf("format %q needs planar input, got dimension %d", env.cfg.Format, len(samples))
	}
	switch env.cfg.Format {
	case "geojson":
		return writeGeoJSON(env.out, shapes)
	case "svg":
		sites := make([][]float64, hull.NumSamples(samples))
		for i := range sites {
			sites[i] = point(samples, i)
		}
		return writeSVG(env.out, shapes, sites)
	}
	return errors.Errorf("unknown format %q", env.cfg.Format)
}

func point(samples [][]float64, i int) []float64 {
	p := make([]float64, len(samples))
	for d := range samples {
		p[d] = samples[d][i]
	}
	return p
}
