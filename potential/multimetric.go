package potential

import (
	"github.com/katalvlaran/tdcch/elimtree"
	"github.com/katalvlaran/tdcch/graph"
)

// MetricEntry pins one CCH customization to a time-of-day window. Start
// and End are offsets into the period; End < Start means the window
// wraps past the period boundary (e.g. a 22:00-04:00 overnight window),
// matching original_source's balanced_interval_pattern/rush_hour_pattern
// (spec §C supplemented feature: "MetricEntry windows are allowed to
// wrap the period").
type MetricEntry struct {
	Start, End uint32
	Metric     elimtree.Metric
}

func (e MetricEntry) contains(t uint32) bool {
	if e.Start <= e.End {
		return t >= e.Start && t < e.End
	}
	return t >= e.Start || t < e.End
}

// MultiMetric picks among several precomputed scalar customizations by
// time of day, re-selecting at every At call so a node's own estimated
// arrival time - not just the query's departure time - decides which
// window's bound applies (spec §4.5 "multi-metric potential").
type MultiMetric struct {
	entries  []MetricEntry
	period   uint32
	searcher *elimtree.Searcher
	target   graph.NodeID
}

// NewMultiMetric builds a multi-metric potential. Entries are checked in
// order and the first one whose window contains a timestamp wins, so
// overlapping entries resolve to the earliest match. A timestamp that no
// entry covers selects no metric, and Init and At then return false.
func NewMultiMetric(searcher *elimtree.Searcher, period uint32, entries []MetricEntry) *MultiMetric {
	return &MultiMetric{entries: entries, period: period, searcher: searcher}
}

// SelectMetric resolves the customization active at timestamp t, or nil
// if no entry's window covers it.
func (m *MultiMetric) SelectMetric(t uint32) elimtree.Metric {
	tm := t % m.period
	for _, e := range m.entries {
		if e.contains(tm) {
			return e.Metric
		}
	}
	return nil
}

func (m *MultiMetric) Init(source, target graph.NodeID, departure uint32) (bool, error) {
	m.target = target
	metric := m.SelectMetric(departure)
	if metric == nil {
		return false, nil
	}
	_, ok := m.searcher.Query(metric, source, target)
	return ok, nil
}

func (m *MultiMetric) At(v graph.NodeID, tEstimate uint32) (uint32, bool) {
	metric := m.SelectMetric(tEstimate)
	if metric == nil {
		return 0, false
	}
	b, ok := m.searcher.Query(metric, v, m.target)
	if !ok {
		return 0, false
	}
	return b.Lo, true
}
