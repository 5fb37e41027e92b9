// Package telemetry is the reporting surface every ingestion component logs through.
package telemetry

import "strings"

// API is an abstraction over logging/metrics so tests can assert on what a component reported.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that failed in a way that should be looked at, a
	// collection page that could not be fetched or an image that could not be transcoded.
	//
	// `id` names the component and method that broke (ex. `aggregator.build-collection`), never
	// the exact line. Ids are lowercase, methods are joined with dashes. Anything finer goes
	// into params.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that did not stop the run but may deserve a look, a
	// malformed card block for instance. Ids follow ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports information that is only useful while developing.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current value of a counter. Values are points over time and
	// should not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, usually the package or the run reporting.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	var b strings.Builder
	b.Grow(len(s.namespace) + len(id) + 2)
	b.WriteString(s.namespace)
	b.WriteString(": ")
	b.WriteString(id)
	return b.String()
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
