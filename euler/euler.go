package euler

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/lwkobe/ryujin/InputParameters"
	"github.com/lwkobe/ryujin/graph"
	"github.com/lwkobe/ryujin/types"
	"github.com/lwkobe/ryujin/utils"
)

/*
Euler advances the compressible Euler equations on a connectivity graph
with the invariant-domain-preserving convex-limited scheme. One Step runs
six phases in strict order, each closed by a full barrier:

	gather viscosities -> step size -> low-order update ->
	antidiffusive fluxes -> limiting -> apply

Within a phase the work is partitioned into contiguous node ranges, one
goroutine per range. An undirected edge is owned by its lower-index
endpoint; the owner writes both mirror slots of any per-edge table, so no
two workers ever write the same slot and the fast path needs no locks.
*/
type Euler struct {
	// Input parameters
	CFL, FinalTime float64
	Fluid          *Fluid
	Case           types.CASE
	Grid           *graph.Graph
	RS             *RiemannSolver
	Lim            *Limiter
	Ind            *Indicator
	Partitions     *utils.PartitionMap
	Exch           graph.Exchanger
	MaxIterations  int
	Check          bool // enables the debug admissibility assertions

	// Published solution, replaced wholesale at the end of each step
	Qn *Solution

	// Per-step scratch, reused across steps
	qLow, qNext  *Solution
	dij          []float64    // graph viscosity per slot
	dRowSum      []float64    // sum of off-diagonal d_ij per node
	aij          [4][]float64 // raw antidiffusive flux per slot
	tij          []float64    // limiter factor per slot
	alpha        []float64    // indicator per node
	nodeBounds   []Bounds
	newtonBucket []int

	Time        float64
	StepCount   int
	StepNewton  int // Newton iterations spent in the last step
	chart       ChartState
	initialMass [4]float64
}

func NewEuler(ip *InputParameters.Parameters, g *graph.Graph, verbose bool) (c *Euler) {
	var (
		fl = NewFluid(ip.Gamma)
	)
	limiterKind, ok := types.LimiterNameMap[strings.ToLower(ip.Limiter)]
	if !ok {
		panic(fmt.Errorf("unknown limiter %q", ip.Limiter))
	}
	indicatorKind, ok := types.IndicatorNameMap[strings.ToLower(ip.Indicator)]
	if !ok {
		panic(fmt.Errorf("unknown indicator %q", ip.Indicator))
	}
	caseKind, ok := types.CaseNameMap[strings.ToLower(ip.InitType)]
	if !ok {
		panic(fmt.Errorf("unknown initial condition %q", ip.InitType))
	}
	c = &Euler{
		CFL:           ip.CFL,
		FinalTime:     ip.FinalTime,
		Fluid:         fl,
		Case:          caseKind,
		Grid:          g,
		RS:            NewRiemannSolver(fl, ip.NewtonIterations, ip.GreedyDij, ip.GreedyThreshold),
		Lim:           NewLimiter(fl, limiterKind, 3),
		Ind:           NewIndicator(fl, indicatorKind),
		Exch:          graph.NoopExchanger{},
		MaxIterations: ip.MaxIterations,
		Check:         ip.CheckBounds,
	}
	c.RS.Check = ip.CheckBounds
	c.Lim.Check = ip.CheckBounds

	procLimit := ip.ParallelDegree
	if procLimit <= 0 {
		procLimit = 1
	}
	if procLimit > g.N {
		procLimit = g.N
	}
	c.Partitions = utils.NewPartitionMap(procLimit, g.N)

	nnz := g.Nnz()
	c.Qn = NewSolution(g.N)
	c.qLow = NewSolution(g.N)
	c.qNext = NewSolution(g.N)
	c.dij = make([]float64, nnz)
	c.dRowSum = make([]float64, g.N)
	for n := 0; n < 4; n++ {
		c.aij[n] = make([]float64, nnz)
	}
	c.tij = make([]float64, nnz)
	c.alpha = make([]float64, g.N)
	c.nodeBounds = make([]Bounds, g.N)
	c.newtonBucket = make([]int, procLimit)

	c.InitializeSolution(ip)
	// Prescribed boundary nodes hold their initial state.
	for k, b := range g.Bnd {
		if b.BC == types.BC_Dirichlet {
			g.Bnd[k].Value = c.Qn.At(int(b.Node))
		}
	}
	c.initialMass = c.ConservedTotals()

	if verbose {
		fmt.Printf("Euler Equations in 2 Dimensions, Invariant Domain Preserving Scheme\n")
		bLo, bHi := g.N, 0
		for np := 0; np < c.Partitions.ParallelDegree; np++ {
			d := c.Partitions.GetBucketDimension(np)
			if d < bLo {
				bLo = d
			}
			if d > bHi {
				bHi = d
			}
		}
		fmt.Printf("Using %d go routines in parallel, %d to %d nodes each\n",
			c.Partitions.ParallelDegree, bLo, bHi)
		fmt.Printf("Solving %s\n", c.Case)
		fmt.Printf("Limiter: %s, Indicator: %s\n", c.Lim.Kind, c.Ind.Kind)
		if c.RS.Greedy {
			fmt.Printf("Greedy viscosity enabled, density contrast threshold = %8.5f\n", c.RS.GreedyThreshold)
		}
		fmt.Printf("CFL = %8.4f, Gamma = %8.4f, Newton budget = %d, Num Nodes = %d\n\n",
			c.CFL, fl.Gamma, c.RS.MaxIterations, g.N)
	}
	return
}

// parallel fans one closure out per node-range bucket and waits for all of
// them, the barrier between two phases of a step.
func (c *Euler) parallel(run func(np, iMin, iMax int)) {
	var (
		wg = sync.WaitGroup{}
		NP = c.Partitions.ParallelDegree
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			iMin, iMax := c.Partitions.GetBucketRange(np)
			run(np, iMin, iMax)
			wg.Done()
		}(np)
	}
	wg.Wait()
}

/*
Step advances the published solution by one explicit step of at most
tauMax and returns the step size actually taken. The new state is
published only after every node has committed; a partially applied step
cannot be observed.
*/
func (c *Euler) Step(tauMax float64) (tau float64) {
	c.gatherViscosities()
	tau = c.CalculateDT(tauMax)
	c.lowOrderUpdate(tau)
	c.Exch.Sync(c.qLow.Q[0], c.qLow.Q[1], c.qLow.Q[2], c.qLow.Q[3])
	c.antidiffusiveFluxes()
	c.limitFluxes(tau)
	c.apply(tau)
	c.ApplyBoundary(c.qNext)

	if c.Check && !c.qNext.Admissible(c.Fluid) {
		panic("admissibility violation: negative density or internal energy after apply")
	}

	// Publish: the completed state replaces the old one by slice swap.
	c.Qn, c.qNext = c.qNext, c.Qn
	c.Exch.Sync(c.Qn.Q[0], c.Qn.Q[1], c.Qn.Q[2], c.Qn.Q[3])
	c.StepCount++
	return
}

// gatherViscosities fills d_ij = lambda_max * |c_ij| for every edge and the
// indicator alpha for every node. The wave speed bound is exactly symmetric
// under (i,j,n) -> (j,i,-n), so one evaluation per undirected edge covers
// both mirror slots.
func (c *Euler) gatherViscosities() {
	var (
		g = c.Grid
	)
	c.parallel(func(np, iMin, iMax int) {
		var newton int
		for i := iMin; i < iMax; i++ {
			qi := c.Qn.At(i)
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				j := int(g.Col[s])
				if j <= i {
					if j == i {
						c.dij[s] = 0.
					}
					continue
				}
				cx, cy := g.Cij(s)
				norm := g.Norm(s)
				nx, ny := cx/norm, cy/norm
				lambda, _, iters := c.RS.ComputeDirected(qi, c.Qn.At(j), nx, ny)
				if iters > 0 {
					newton += iters
				}
				d := lambda * norm
				c.dij[s] = d
				c.dij[g.Mirror[s]] = d
			}
			c.alpha[i] = c.Ind.Alpha(g, c.Qn, i)
		}
		c.newtonBucket[np] = newton
	})
	c.StepNewton = 0
	for _, n := range c.newtonBucket {
		c.StepNewton += n
	}
	c.parallel(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			var sum float64
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				if int(g.Col[s]) != i {
					sum += c.dij[s]
				}
			}
			c.dRowSum[i] = sum
		}
	})
}

// CalculateDT is the classical explicit stability bound
// tau = CFL * min_i m_i / (2 sum_j d_ij), clamped to the caller's target.
func (c *Euler) CalculateDT(tauMax float64) (tau float64) {
	var (
		g = c.Grid
	)
	tau = math.Inf(1)
	for i := 0; i < g.N; i++ {
		if c.dRowSum[i] <= 0. {
			continue
		}
		if t := g.M[i] / (2. * c.dRowSum[i]); t < tau {
			tau = t
		}
	}
	tau *= c.CFL
	if tau > tauMax {
		tau = tauMax
	}
	return
}

/*
lowOrderUpdate forms the provisional state

	U_i^L = U_i + (tau/m_i) sum_j [ -f(U_j).c_ij + d_ij (U_j - U_i) ].

The diagonal slot contributes -f(U_i).c_ii, the boundary closure; on
interior rows the c_ij sum telescopes to zero. With tau from CalculateDT
this update is a convex combination of admissible states and cannot leave
the invariant domain.
*/
func (c *Euler) lowOrderUpdate(tau float64) {
	var (
		g = c.Grid
	)
	c.parallel(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			var (
				qi  = c.Qn.At(i)
				acc [4]float64
			)
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				j := int(g.Col[s])
				cx, cy := g.Cij(s)
				qj := c.Qn.At(j)
				fc := c.Fluid.FluxDotC(qj, cx, cy)
				d := c.dij[s]
				for n := 0; n < 4; n++ {
					acc[n] += -fc[n] + d*(qj[n]-qi[n])
				}
			}
			scale := tau / g.M[i]
			var qL [4]float64
			for n := 0; n < 4; n++ {
				qL[n] = qi[n] + scale*acc[n]
			}
			if c.Check {
				if !(qL[0] > 0.) || c.Fluid.InternalEnergy(qL) < -utils.NODETOL {
					bn, _, _ := c.Partitions.GetBucket(i)
					panic(fmt.Errorf("admissibility violation in low-order update at node %d, worker %d", i, bn))
				}
			}
			c.qLow.Set(i, qL)
		}
	})
}

// antidiffusiveFluxes computes the raw high-order correction per edge,
// A_ij = (d_ij^H - d_ij)(U_j - U_i), with the high-order viscosity scaled
// by the worse of the two endpoint indicators. A_ij = -A_ji by
// construction; the owner writes both mirror slots.
func (c *Euler) antidiffusiveFluxes() {
	var (
		g = c.Grid
	)
	c.parallel(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			qi := c.Qn.At(i)
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				j := int(g.Col[s])
				if j == i {
					for n := 0; n < 4; n++ {
						c.aij[n][s] = 0.
					}
					continue
				}
				if j < i {
					continue
				}
				d := c.dij[s]
				dHigh := d * math.Max(c.alpha[i], c.alpha[j])
				qj := c.Qn.At(j)
				ms := g.Mirror[s]
				for n := 0; n < 4; n++ {
					a := (dHigh - d) * (qj[n] - qi[n])
					c.aij[n][s] = a
					c.aij[n][ms] = -a
				}
			}
		}
	})
}

/*
limitFluxes first derives per-node admissibility bounds from the low-order
neighborhood, then finds the largest admissible blending factor per edge.
The symmetrized minimum t_ij = t_ji = min over both endpoints keeps the
limited flux exchange conservative no matter whose bound is tighter.
*/
func (c *Euler) limitFluxes(tau float64) {
	var (
		g = c.Grid
	)
	c.parallel(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			b := Bounds{RhoMin: math.Inf(1), RhoMax: math.Inf(-1), SMin: math.Inf(1)}
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				qj := c.qLow.At(int(g.Col[s]))
				b.Merge(Bounds{RhoMin: qj[0], RhoMax: qj[0], SMin: c.Fluid.SpecificEntropy(qj)})
			}
			c.nodeBounds[i] = b
		}
	})
	c.parallel(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			qiL := c.qLow.At(i)
			lambdaInvI := float64(g.Degree(i))
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				j := int(g.Col[s])
				if j == i {
					c.tij[s] = 0.
					continue
				}
				if j < i {
					continue
				}
				var (
					ms         = g.Mirror[s]
					qjL        = c.qLow.At(j)
					lambdaInvJ = float64(g.Degree(j))
					scaleI     = lambdaInvI * tau / g.M[i]
					scaleJ     = lambdaInvJ * tau / g.M[j]
					pi, pj     [4]float64
				)
				for n := 0; n < 4; n++ {
					pi[n] = scaleI * c.aij[n][s]
					pj[n] = scaleJ * c.aij[n][ms]
				}
				bi, bj := c.nodeBounds[i], c.nodeBounds[j]
				if c.Lim.Kind >= types.LimiterEntropyInequality {
					cx, cy := g.Cij(s)
					norm := g.Norm(s)
					pb := c.Lim.PairBounds(qiL, qjL, cx/norm, cy/norm)
					bi.EntAvg, bi.EntFlux = pb.EntAvg, pb.EntFlux
					bj.EntAvg, bj.EntFlux = pb.EntAvg, pb.EntFlux
				}
				t := math.Min(
					c.Lim.Limit(bi, qiL, pi, 0., 1.),
					c.Lim.Limit(bj, qjL, pj, 0., 1.),
				)
				c.tij[s] = t
				c.tij[ms] = t
			}
		}
	})
}

// apply assembles U^{n+1} = U^L + (tau/m_i) sum_j t_ij A_ij per node. A
// node is written only after all of its incident edges have been limited;
// the preceding barrier guarantees that.
func (c *Euler) apply(tau float64) {
	var (
		g = c.Grid
	)
	c.parallel(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			var acc [4]float64
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				t := c.tij[s]
				for n := 0; n < 4; n++ {
					acc[n] += t * c.aij[n][s]
				}
			}
			scale := tau / g.M[i]
			q := c.qLow.At(i)
			for n := 0; n < 4; n++ {
				q[n] += scale * acc[n]
			}
			c.qNext.Set(i, q)
		}
	})
}

// ApplyBoundary runs the post-step boundary treatment: slip walls lose
// their normal momentum component, prescribed nodes are reset, do-nothing
// and periodic nodes are left alone (periodic pairs are glued in the
// graph).
func (c *Euler) ApplyBoundary(sol *Solution) {
	for _, b := range c.Grid.Bnd {
		i := int(b.Node)
		switch b.BC {
		case types.BC_Slip:
			q := sol.At(i)
			mn := q[1]*b.Nx + q[2]*b.Ny
			q[1] -= mn * b.Nx
			q[2] -= mn * b.Ny
			sol.Set(i, q)
		case types.BC_Dirichlet:
			sol.Set(i, b.Value)
		}
	}
}

// ConservedTotals returns sum_i m_i U_i, the global mass, momentum and
// energy content. Invariant under a step on closed graphs.
func (c *Euler) ConservedTotals() (totals [4]float64) {
	for n := 0; n < 4; n++ {
		totals[n] = floats.Dot(c.Grid.M, c.Qn.Q[n])
	}
	return
}

// MaxWaveSpeed reports the largest viscosity-normalized wave speed of the
// last gather, for progress output.
func (c *Euler) MaxWaveSpeed() (lm float64) {
	for s, d := range c.dij {
		if norm := c.Grid.Norm(int32(s)); norm > 0. {
			if v := d / norm; v > lm {
				lm = v
			}
		}
	}
	return
}

// Run is the outer time loop: step until the final time, reporting
// progress and optionally plotting every interval steps.
func (c *Euler) Run(pm *PlotMeta) {
	var (
		finished bool
		steps    int
		tau      float64
	)
	fmt.Printf("Solving until finaltime = %8.5f\n", c.FinalTime)
	fmt.Printf("    iter    time  min_dt    minRho  maxWave    newton\n")

	elapsed := time.Duration(0)
	var start time.Time
	for !finished {
		start = time.Now()
		tau = c.Step(c.FinalTime - c.Time)
		elapsed += time.Now().Sub(start)
		steps++
		c.Time += tau
		finished = c.CheckIfFinished(steps)
		if finished || steps%pm.StepsBeforePlot == 0 || steps == 1 {
			c.PrintUpdate(tau, steps)
			if pm.Plot {
				c.PlotSolution(pm)
			}
		}
	}
	c.PrintFinal(elapsed, steps)
}

func (c *Euler) CheckIfFinished(steps int) (finished bool) {
	if c.Time >= c.FinalTime-utils.NODETOL || (c.MaxIterations > 0 && steps >= c.MaxIterations) {
		finished = true
	}
	return
}

func (c *Euler) PrintUpdate(tau float64, steps int) {
	fmt.Printf("%8d%8.5f%8.5f%10.3e%9.4f%10d\n",
		steps, c.Time, tau, c.Qn.MinDensity(), c.MaxWaveSpeed(), c.StepNewton)
}

func (c *Euler) PrintFinal(elapsed time.Duration, steps int) {
	rate := float64(elapsed.Microseconds()) / (float64(c.Grid.N) * float64(steps))
	fmt.Printf("\nRate of execution = %8.5f us/(node*iteration) over %d iterations\n", rate, steps)
	totals := c.ConservedTotals()
	fmt.Printf("Conservation drift: mass %11.4e, x-mom %11.4e, y-mom %11.4e, energy %11.4e\n",
		totals[0]-c.initialMass[0], totals[1]-c.initialMass[1],
		totals[2]-c.initialMass[2], totals[3]-c.initialMass[3])
}
