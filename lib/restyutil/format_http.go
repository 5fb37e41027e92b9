package restyutil

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range headers[k] {
			out.WriteString(k)
			out.WriteString(": ")
			out.WriteString(v)
			out.WriteByte('\n')
		}
	}
}

// formatExchange renders a request line, the response status and headers, then the body.
func formatExchange(res *resty.Response) string {
	var out strings.Builder
	out.WriteString("> ")
	out.WriteString(res.Request.Method)
	out.WriteByte(' ')
	out.WriteString(res.Request.URL)
	out.WriteString("\n< ")
	out.WriteString(strconv.Itoa(res.StatusCode()))
	out.WriteByte('\n')
	writeHeaders(&out, res.Header())
	out.WriteByte('\n')
	out.Write(res.Body())
	return out.String()
}
