package euler

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"

	"github.com/lwkobe/ryujin/sod"
	"github.com/lwkobe/ryujin/types"
)

// PlotMeta controls the live solution chart of the driver loop.
type PlotMeta struct {
	Plot            bool
	StepsBeforePlot int
	Delay           time.Duration
	FieldMin        float64
	FieldMax        float64
}

type ChartState struct {
	chart    *chart2d.Chart2D
	colorMap *utils2.ColorMap
	plotOnce sync.Once
	order    []int // node indices sorted by x for the 1-D profile
}

/*
PlotSolution renders the density, normal momentum and energy profiles over
x. For the Sod case the analytic solution is overlaid as a point series,
the running visual check against the oracle.
*/
func (c *Euler) PlotSolution(pm *PlotMeta) {
	var (
		g  = c.Grid
		ch = &c.chart
	)
	ch.plotOnce.Do(func() {
		xmin, xmax := floatsMinMax(g.X)
		ch.chart = chart2d.NewChart2D(1920, 1280, float32(xmin), float32(xmax),
			float32(pm.FieldMin), float32(pm.FieldMax))
		ch.colorMap = utils2.NewColorMap(-1, 1, 1)
		ch.order = make([]int, g.N)
		for i := range ch.order {
			ch.order[i] = i
		}
		sort.Slice(ch.order, func(a, b int) bool { return g.X[ch.order[a]] < g.X[ch.order[b]] })
		go ch.chart.Plot()
	})

	x := make([]float64, g.N)
	field := make([]float64, g.N)
	pSeries := func(extract func(q [4]float64) float64, name string, color float32, gl chart2d.GlyphType) {
		for ii, i := range ch.order {
			x[ii] = g.X[i]
			field[ii] = extract(c.Qn.At(i))
		}
		if err := ch.chart.AddSeries(name, x, field,
			gl, chart2d.Solid, ch.colorMap.GetRGB(color)); err != nil {
			panic("unable to add graph series")
		}
	}
	pSeries(func(q [4]float64) float64 { return q[0] }, "Rho", -0.7, chart2d.NoGlyph)
	pSeries(func(q [4]float64) float64 { return q[1] }, "RhoU", 0.0, chart2d.NoGlyph)
	pSeries(func(q [4]float64) float64 { return q[3] }, "Ener", 0.7, chart2d.NoGlyph)

	if c.Case == types.CaseSod {
		sol := sod.SolutionAt(c.Time)
		if err := ch.chart.AddSeries("ExactRho", sol.X, sol.Rho,
			chart2d.XGlyph, chart2d.NoLine, ch.colorMap.GetRGB(-0.7)); err != nil {
			panic("unable to add exact solution Rho")
		}
	}
	if pm.Delay != 0 {
		time.Sleep(pm.Delay)
	}
}

func floatsMinMax(x []float64) (xmin, xmax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	for _, v := range x {
		if v < xmin {
			xmin = v
		}
		if v > xmax {
			xmax = v
		}
	}
	return
}
