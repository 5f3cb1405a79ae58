// Package server implements the capacity server (C9): the single-
// threaded query/update/customization orchestrator described in spec
// §4.7. It owns the live capacity state (bucketed edge PLFs) and the
// CCH customization feeding the query potential, serializing queries and
// re-customization under one mutex (spec §5 "at-most-one concurrent
// customization invariant").
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/katalvlaran/tdcch/astar"
	"github.com/katalvlaran/tdcch/capacity"
	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/config"
	"github.com/katalvlaran/tdcch/customization"
	"github.com/katalvlaran/tdcch/elimtree"
	"github.com/katalvlaran/tdcch/graph"
	"github.com/katalvlaran/tdcch/metrics"
	"github.com/katalvlaran/tdcch/potential"
)

// ErrUnknownNode is returned when a query names a node outside [0, N).
var ErrUnknownNode = errors.New("server: node id out of range")

// ArrivalTolerance is the disagreement threshold between A*'s own
// arrival time and the path-rescan confirmation (spec §4.7 step 3)
// at or above which a result is marked invalid. Re-evaluating with the exact
// same FIFO PLF arithmetic A* itself used means any disagreement can
// only come from a potential that silently pruned a node it should not
// have — a customization-staleness symptom, not floating-point noise,
// so even a small tolerance is meaningful here.
const ArrivalTolerance = 1

// Result is the outcome of one query (spec §6 QueryResult).
type Result struct {
	Found         bool
	Arrival       uint32
	Path          []graph.EdgeID
	EntryTimes    []uint32
	ResultInvalid bool
}

// Engine is the capacity server. Construct with New, then call Query
// repeatedly; Query holds mu for its whole body, so concurrent calls run
// one at a time (spec §5's single-threaded cooperative scheduling model),
// together with their internal customization runs.
type Engine struct {
	mu sync.Mutex

	g      *graph.Graph
	c      *cch.CCH
	edges  []*capacity.Edge
	cfg    config.Engine
	logger *slog.Logger
	report metrics.Reporter

	customizer *customization.IntervalMinimaCustomizer
	searcher   *elimtree.Searcher
	pot        potential.Potential
	astarS     *astar.Searcher

	stale bool // conservative: any flow deposit marks the whole CCH stale
}

// New builds an Engine over g, contracting a CCH under order and running
// the initial customization. multiMetricEntries is required (and used)
// only when cfg.Potential == potential.FamilyMultiMetric; building the
// per-window customizations it references is left to the caller, since
// deciding which sampled hours back which window is a data-preparation
// concern, not server orchestration (see DESIGN.md).
func New(g *graph.Graph, order []uint32, cfg config.Engine, logger *slog.Logger, report metrics.Reporter, multiMetricEntries []potential.MetricEntry) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if report == nil {
		report = metrics.NopReporter{}
	}

	c, err := cch.Build(g, order)
	if err != nil {
		return nil, fmt.Errorf("server: build cch: %w", err)
	}

	edges := make([]*capacity.Edge, g.NumArcs())
	congestion := capacity.BPR(cfg.BPRAlpha, cfg.BPRBeta)
	for e := 0; e < g.NumArcs(); e++ {
		ed, err := capacity.NewEdge(g.FreeFlow(graph.EdgeID(e)), g.BucketCapacity(graph.EdgeID(e)), cfg.Period, cfg.Buckets, congestion)
		if err != nil {
			return nil, fmt.Errorf("server: build edge %d: %w", e, err)
		}
		edges[e] = ed
	}

	ic, err := customization.NewIntervalMinimaCustomizer(c, int(cfg.IntervalK), graphIntervalSeed{g})
	if err != nil {
		return nil, fmt.Errorf("server: build customizer: %w", err)
	}
	if err := ic.Customize(context.Background()); err != nil {
		return nil, fmt.Errorf("server: initial customization: %w", err)
	}

	searcher := elimtree.NewSearcher(c)

	var pot potential.Potential
	switch cfg.Potential {
	case potential.FamilyZero:
		pot = potential.Zero{}
	case potential.FamilyCorridor:
		pot = potential.NewCorridorLowerBound(searcher, elimtree.IntervalScalarView{IC: ic})
	case potential.FamilyMultiMetric:
		if len(multiMetricEntries) == 0 {
			return nil, fmt.Errorf("server: potential=multi_metric requires multiMetricEntries")
		}
		pot = potential.NewMultiMetric(searcher, cfg.Period, multiMetricEntries)
	default:
		return nil, fmt.Errorf("server: unknown potential family %d", cfg.Potential)
	}

	return &Engine{
		g:          g,
		c:          c,
		edges:      edges,
		cfg:        cfg,
		logger:     logger,
		report:     report,
		customizer: ic,
		searcher:   searcher,
		pot:        pot,
		astarS:     astar.NewSearcher(g),
	}, nil
}

// Query answers one (from, to, departure) request, depositing one flow
// unit per path edge when update is true (spec §6's query surface).
func (s *Engine) Query(ctx context.Context, from, to graph.NodeID, departure uint32, update bool) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := graph.NodeID(s.g.NumNodes())
	if from >= n || to >= n {
		return Result{}, fmt.Errorf("%w: from=%d to=%d n=%d", ErrUnknownNode, from, to, n)
	}

	start := time.Now()

	feasible, err := s.pot.Init(from, to, departure)
	if err != nil {
		return Result{}, fmt.Errorf("server: potential init: %w", err)
	}
	if !feasible {
		s.report.QueryCompleted(false, 0, time.Since(start))
		return Result{Found: false}, nil
	}

	var ub upperBoundView
	aRes, err := s.astarS.Query(s.g, liveProfiles{s.edges}, s.pot, ub, from, to, departure)
	if err != nil {
		if errors.Is(err, astar.ErrPotentialInfeasible) {
			s.logger.Warn("potential infeasible at query init, triggering re-customization", "from", from, "to", to)
			if cerr := s.recustomize(ctx); cerr != nil {
				return Result{}, cerr
			}
		}
		return Result{}, err
	}
	if !aRes.Found {
		s.report.QueryCompleted(false, 0, time.Since(start))
		return Result{Found: false}, nil
	}

	resultInvalid := s.rescanIsInconsistent(aRes, departure)

	if update {
		s.depositFlow(aRes)
	}

	if resultInvalid || s.stale {
		s.report.StalenessDetected()
		if err := s.recustomize(ctx); err != nil {
			return Result{}, err
		}
	}

	s.report.QueryCompleted(true, len(aRes.Path), time.Since(start))
	return Result{
		Found:         true,
		Arrival:       aRes.Arrival,
		Path:          aRes.Path,
		EntryTimes:    aRes.EntryTimes,
		ResultInvalid: resultInvalid,
	}, nil
}

// rescanIsInconsistent re-evaluates the settled path's travel time
// directly against the live edge profiles (no potential involved) and
// compares it with A*'s own arrival (spec §4.7 step 3).
func (s *Engine) rescanIsInconsistent(res astar.Result, departure uint32) bool {
	t := departure
	for _, e := range res.Path {
		t += s.edges[e].Profile().Evaluate(t)
	}
	diff := int64(t) - int64(res.Arrival)
	if diff < 0 {
		diff = -diff
	}
	return diff >= ArrivalTolerance
}

// depositFlow commits one flow unit per path edge at its recorded entry
// time, regenerating that edge's PLF (spec §4.7 step 4), and
// conservatively marks the whole CCH customization stale: a changed
// profile can only ever worsen (never improve) a shortcut's lower
// bound, so always re-customizing after any deposit is a safe, if
// coarser-than-per-shortcut, substitute for spec's per-triangle
// update_valid tracking (documented in DESIGN.md).
func (s *Engine) depositFlow(res astar.Result) {
	for i, e := range res.Path {
		if _, _, err := s.edges[e].Deposit(res.EntryTimes[i]); err != nil {
			s.logger.Error("flow deposit failed", "edge", e, "err", err)
			continue
		}
		s.report.FlowDeposited()
	}
	s.stale = true
}

// recustomize re-runs the interval-minima customization the potential
// depends on. Spec §4.3 allows upper-bound-only bounded re-
// customization; this implementation re-runs the full customizer, which
// is correct (the potential never exceeds the true remaining distance,
// since IntervalMinimaCustomizer is a lower-bound algebra throughout)
// but not the tightest-possible incremental update (see DESIGN.md).
func (s *Engine) recustomize(ctx context.Context) error {
	start := time.Now()
	if err := s.customizer.Customize(ctx); err != nil {
		return fmt.Errorf("server: re-customization: %w", err)
	}
	s.stale = false
	s.report.CustomizationRun(time.Since(start))
	s.logger.Info("re-customization complete", "duration", time.Since(start))
	return nil
}

// upperBoundView reports no upper bound for every node, effectively
// disabling astar's init-time infeasibility check until a caller wires a
// real upper-bound source (e.g. a ScalarCustomizer's Hi component via an
// adapter symmetric to elimtree.IntervalScalarView).
type upperBoundView struct{}

func (upperBoundView) At(graph.NodeID) (uint32, bool) { return 0, false }
