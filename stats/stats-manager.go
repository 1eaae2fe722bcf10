package stats

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cevaris/ordered_map"
	"github.com/relloyd/biopipe/logger"
)

type StatsFetcher interface {
	GetStats() []Stats
}

// Manager implements StatsFetcher and holds the counters of each pipeline step added via AddStep,
// in the order the steps were added.
type Manager struct {
	mu           sync.Mutex
	log          logger.Logger
	mapStepStats *ordered_map.OrderedMap // map of step name to *Step.
}

// NewManager creates a new stats Manager.
func NewManager(log logger.Logger) *Manager {
	return &Manager{log: log, mapStepStats: ordered_map.NewOrderedMap()}
}

// AddStep creates a new Step and saves it into this Manager.
// Adding a step name twice returns the existing Step.
func (m *Manager) AddStep(stepName string) *Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.mapStepStats.Get(stepName); ok {
		return s.(*Step)
	}
	s := newStep(stepName)
	m.mapStepStats.Set(stepName, s)
	return s
}

// GetStats implements interface StatsFetcher{}.
func (m *Manager) GetStats() []Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	statsList := make([]Stats, 0, m.mapStepStats.Len())
	iter := m.mapStepStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() { // for each step...
		statsList = append(statsList, kv.Value.(*Step).Render())
	}
	return statsList
}

// LogStats writes one line per step at info level.
func (m *Manager) LogStats() {
	for _, s := range m.GetStats() {
		m.log.Info(s.String())
	}
}

// Step counts the rows seen by a single pipeline step.
type Step struct {
	name      string
	startTime time.Time
	endTime   time.Time
	rowsIn    int64
	rowsOut   int64
	mu        sync.Mutex
	dropped   *ordered_map.OrderedMap // map of reason to *int64 count.
}

func newStep(name string) *Step {
	return &Step{name: name, startTime: time.Now(), dropped: ordered_map.NewOrderedMap()}
}

func (s *Step) AddRowsIn(n int64) {
	atomic.AddInt64(&s.rowsIn, n)
}

func (s *Step) AddRowsOut(n int64) {
	atomic.AddInt64(&s.rowsOut, n)
}

// Drop counts n rows dropped for reason.
func (s *Step) Drop(reason string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.dropped.Get(reason)
	if !ok {
		var c int64
		v = &c
		s.dropped.Set(reason, v)
	}
	atomic.AddInt64(v.(*int64), n)
}

// Done records the end time of the step.
func (s *Step) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
}

// Render gets a struct filled with stats at the point of time it is called.
func (s *Step) Render() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.endTime
	statusText := "complete"
	if end.IsZero() {
		end = time.Now()
		statusText = "running"
	}
	dropped := make([]DropCount, 0, s.dropped.Len())
	iter := s.dropped.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		dropped = append(dropped, DropCount{Reason: kv.Key.(string), Rows: atomic.LoadInt64(kv.Value.(*int64))})
	}
	return Stats{
		StepName:   s.name,
		StatusText: statusText,
		ElapsedMs:  end.Sub(s.startTime).Milliseconds(),
		RowsIn:     atomic.LoadInt64(&s.rowsIn),
		RowsOut:    atomic.LoadInt64(&s.rowsOut),
		Dropped:    dropped,
	}
}

type DropCount struct {
	Reason string `json:"reason"`
	Rows   int64  `json:"rows"`
}

type Stats struct {
	StepName   string      `json:"stepName"`
	StatusText string      `json:"statusText"`
	ElapsedMs  int64       `json:"elapsedMs"`
	RowsIn     int64       `json:"rowsIn"`
	RowsOut    int64       `json:"rowsOut"`
	Dropped    []DropCount `json:"dropped"`
}

// DroppedRows returns the count for reason, or 0.
func (s Stats) DroppedRows(reason string) int64 {
	for _, d := range s.Dropped {
		if d.Reason == reason {
			return d.Rows
		}
	}
	return 0
}

// String will format the stats for general logging.
func (s Stats) String() string {
	d := make([]string, len(s.Dropped))
	for i, v := range s.Dropped {
		d[i] = fmt.Sprintf("%v=%v", v.Reason, v.Rows)
	}
	return fmt.Sprintf("Stats for %v %v elapsedMs=%v rowsIn=%v rowsOut=%v dropped=[%v]",
		s.StepName, s.StatusText, s.ElapsedMs, s.RowsIn, s.RowsOut, strings.Join(d, " "))
}
