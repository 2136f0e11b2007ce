package profiling

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Lightweight per-run CPU profiler for stage-level insights. Every tracked
// duration is also observed by a prometheus histogram.

var (
	mu          sync.Mutex
	stageTotals = make(map[string]time.Duration)
	stageCounts = make(map[string]int)

	stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxmesh",
		Name:      "stage_duration_seconds",
		Help:      "Duration of tracked stages.",
		Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(stageDuration)
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		stageDuration.WithLabelValues(name).Observe(d.Seconds())
		mu.Lock()
		stageTotals[name] += d
		stageCounts[name]++
		mu.Unlock()
	}
}

// Reset clears the accumulated totals.
func Reset() {
	mu.Lock()
	clear(stageTotals)
	clear(stageCounts)
	mu.Unlock()
}

// Snapshot returns a copy of current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(stageTotals))
	for k, v := range stageTotals {
		out[k] = v
	}
	return out
}

// Count returns how many times a stage was tracked since the last Reset.
func Count(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return stageCounts[name]
}

// TopN formats top N durations from the current totals.
// Example: "meshing.MeshChunk:4.2ms, world.DirtyChunks:0.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur != list[j].dur {
			return list[i].dur > list[j].dur
		}
		return list[i].name < list[j].name
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+formatMs(ms))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops ".0".
func formatMs(ms float64) string {
	return strconv.FormatFloat(float64(int64(ms*10))/10, 'f', -1, 64) + "ms"
}

// WriteMetrics writes every metric in the default prometheus registry to w
// in the text exposition format.
func WriteMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrapf(err, "encode metric %s", mf.GetName())
		}
	}
	return nil
}
