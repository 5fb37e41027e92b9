package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_http_request  = "http.request"
	report_http_response = "http.response"
)

type requestKey struct{}

type requestInfo struct {
	seq     uint64
	started time.Time
}

type restyReporter struct {
	tel API
	seq *atomic.Uint64
}

// InstrumentResty reports every request `client` makes. Non-2xx responses are warnings,
// requests that got no response at all are broken.
func InstrumentResty(client *resty.Client, tel API) {
	r := restyReporter{tel: tel, seq: &atomic.Uint64{}}
	client.OnBeforeRequest(r.before)
	client.OnAfterResponse(r.after)
	client.OnError(r.failed)
}

func (r restyReporter) before(_ *resty.Client, req *resty.Request) error {
	info := requestInfo{seq: r.seq.Add(1), started: time.Now()}
	req.SetContext(context.WithValue(req.Context(), requestKey{}, info))
	r.tel.ReportDebug(
		report_http_request,
		slog.Uint64("seq", info.seq),
		slog.String("method", req.Method),
		slog.String("url", req.URL),
	)
	return nil
}

func elapsed(req *resty.Request) (requestInfo, time.Duration) {
	info, ok := req.Context().Value(requestKey{}).(requestInfo)
	if !ok {
		return info, 0
	}
	return info, time.Since(info.started)
}

func (r restyReporter) after(_ *resty.Client, res *resty.Response) error {
	info, took := elapsed(res.Request)
	params := []any{
		slog.Uint64("seq", info.seq),
		slog.String("url", res.Request.URL),
		slog.Int("status", res.StatusCode()),
		slog.Duration("took", took),
	}
	if res.IsError() {
		r.tel.ReportWarning(report_http_response, params...)
		return nil
	}
	r.tel.ReportDebug(report_http_response, params...)
	return nil
}

func (r restyReporter) failed(req *resty.Request, err error) {
	info, took := elapsed(req)
	r.tel.ReportBroken(
		report_http_response,
		err,
		slog.Uint64("seq", info.seq),
		slog.String("url", req.URL),
		slog.Duration("took", took),
	)
}
