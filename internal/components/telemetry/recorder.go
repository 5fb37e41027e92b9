package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call made against a Recorder.
type Report struct {
	Kind   string
	Id     string
	Params []any
}

const (
	KindBroken  = "broken"
	KindWarning = "warning"
	KindDebug   = "debug"
	KindCount   = "count"
)

// Recorder implements API by keeping every report in memory, it is meant for tests
// that need to assert a failure was (or wasn't) reported.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
	counts  map[string]int64
}

func NewRecorder() *Recorder {
	return &Recorder{counts: map[string]int64{}}
}

func (r *Recorder) add(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Report{Kind: KindBroken, Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Report{Kind: KindWarning, Id: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Report{Kind: KindDebug, Id: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.counts[id] = count
	r.reports = append(r.reports, Report{Kind: KindCount, Id: id, Params: []any{count}})
}

// Reports returns every report of the given kind whose id ends with `suffix`.
func (r *Recorder) Reports(kind, suffix string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind && strings.HasSuffix(report.Id, suffix) {
			out = append(out, report)
		}
	}
	return out
}

// LastCount returns the latest value reported for the count whose id ends with `suffix`.
func (r *Recorder) LastCount(suffix string) (int64, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := len(r.reports) - 1; i >= 0; i-- {
		report := r.reports[i]
		if report.Kind == KindCount && strings.HasSuffix(report.Id, suffix) {
			return r.counts[report.Id], true
		}
	}
	return 0, false
}
