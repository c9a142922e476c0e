// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/2dChan/ndhull/delaunay"
	"github.com/2dChan/ndhull/hull"
	svg "github.com/ajstarks/svgo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	svgSize   = 1000
	svgMargin = 20

	polygonStyle = "fill:rgb(255,255,255);stroke:rgb(170,170,170);stroke-width:1;stroke-opacity:1.0"
	lineStyle    = "fill:none;stroke:rgb(90,90,90);stroke-width:2"
	siteStyle    = "fill:rgb(0,0,255)"
)

type triangulationOutput struct {
	Dim       int     `json:"dim"`
	Simplexes [][]int `json:"simplexes"`
	Neighbors [][]int `json:"neighbors,omitempty"`
	Edges     [][]int `json:"edges,omitempty"`
	NumEdges  int     `json:"num_edges,omitempty"`
}

type hullOutput struct {
	Dim    int        `json:"dim"`
	Facets [][]int    `json:"facets"`
	Stats  hull.Stats `json:"stats"`
}

type cellOutput struct {
	Site      int   `json:"site"`
	Vertices  []int `json:"vertices"`
	Neighbors []int `json:"neighbors"`
	Bounded   bool  `json:"bounded"`
}

type voronoiOutput struct {
	Dim      int          `json:"dim"`
	Vertices [][]float64  `json:"vertices"`
	Cells    []cellOutput `json:"cells"`
}

// shape is a planar polygon or polyline to render.
type shape struct {
	pts    [][]float64
	closed bool
	props  map[string]any
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeGeoJSON(w io.Writer, shapes []shape) error {
	fc := geojson.NewFeatureCollection()
	for _, s := range shapes {
		var g orb.Geometry
		if s.closed {
			ring := make(orb.Ring, 0, len(s.pts)+1)
			for _, p := range s.pts {
				ring = append(ring, orb.Point{p[0], p[1]})
			}
			ring = append(ring, ring[0])
			g = orb.Polygon{ring}
		} else {
			ls := make(orb.LineString, 0, len(s.pts))
			for _, p := range s.pts {
				ls = append(ls, orb.Point{p[0], p[1]})
			}
			g = ls
		}
		f := geojson.NewFeature(g)
		for k, v := range s.props {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func writeSVG(w io.Writer, shapes []shape, sites [][]float64) error {
	bound := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, p := range sites {
		bound = bound.Extend(orb.Point{p[0], p[1]})
	}
	for _, s := range shapes {
		for _, p := range s.pts {
			bound = bound.Extend(orb.Point{p[0], p[1]})
		}
	}
	span := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1])
	if span == 0 || math.IsInf(span, 0) {
		span = 1
	}
	k := float64(svgSize-2*svgMargin) / span
	toScreen := func(p []float64) (int, int) {
		return svgMargin + int((p[0]-bound.Min[0])*k), svgSize - svgMargin - int((p[1]-bound.Min[1])*k)
	}

	canvas := svg.New(w)
	canvas.Start(svgSize, svgSize)
	canvas.Rect(0, 0, svgSize, svgSize, "fill:rgb(255,255,255)")
	xs := make([]int, 0)
	ys := make([]int, 0)
	for _, s := range shapes {
		xs, ys = xs[:0], ys[:0]
		for _, p := range s.pts {
			x, y := toScreen(p)
			xs = append(xs, x)
			ys = append(ys, y)
		}
		if s.closed {
			canvas.Polygon(xs, ys, polygonStyle)
		} else {
			canvas.Polyline(xs, ys, lineStyle)
		}
	}
	for _, p := range sites {
		x, y := toScreen(p)
		canvas.Circle(x, y, 3, siteStyle)
	}
	canvas.End()
	return nil
}

func printStats(w io.Writer, dt *delaunay.Triangulation, st hull.Stats) {
	fmt.Fprintf(w, "Sites:      %d (dimension %d)\n", st.Sites, dt.Dim())
	fmt.Fprintf(w, "Simplexes:  %d\n", len(dt.Simplexes))
	if dt.Edges != nil {
		fmt.Fprintf(w, "Edges:      %d\n", dt.NumEdges)
	}
	if st.Uncovered+st.ReduceFailures+st.VisibilityFailures > 0 {
		fmt.Fprintf(w, "WARNINGS:\n")
		if st.Uncovered > 0 {
			fmt.Fprintf(w, "  %d sites not in any simplex\n", st.Uncovered)
		}
		if st.ReduceFailures > 0 {
			fmt.Fprintf(w, "  %d basis reductions failed\n", st.ReduceFailures)
		}
		if st.VisibilityFailures > 0 {
			fmt.Fprintf(w, "  %d visibility tests inconclusive\n", st.VisibilityFailures)
		}
	}
}
