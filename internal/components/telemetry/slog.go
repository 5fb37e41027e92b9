package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI implements API on top of log/slog. The zero value logs to slog.Default().
type SlogAPI struct {
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// attrs turns report params into log attributes. Errors are logged under "err", slog.Attr
// values are kept as they are and anything else is logged positionally.
func attrs(id string, params []any) []any {
	out := make([]any, 0, len(params)*2+2)
	if id != "" {
		out = append(out, "id", id)
	}
	for i, p := range params {
		switch v := p.(type) {
		case slog.Attr:
			out = append(out, v)
		case error:
			out = append(out, slog.String("err", v.Error()))
		default:
			out = append(out, fmt.Sprintf("params.%d", i), v)
		}
	}
	return out
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.logger().Error("broken component", attrs(id, params)...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.logger().Warn("warning", attrs(id, params)...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	s.logger().Debug(message, attrs("", params)...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().Debug("count", "id", id, "n", count)
}
