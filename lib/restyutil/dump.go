// Package restyutil keeps a copy of the documents a resty client receives.
package restyutil

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"regexp"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(name string, contents string)
}

// DumpDocuments writes every text response (html, xml, plain text) the client receives to
// `output`, binary responses like images are left out. Files are numbered in the order
// their responses arrive and named after the last segment of the url.
func DumpDocuments(client *resty.Client, output Output) {
	var counter atomic.Uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		if !isDocument(res.Header().Get("content-type")) {
			return nil
		}
		name := fmt.Sprintf("%04d-%s.txt", counter.Add(1), documentName(res.Request.URL))
		output.Write(name, formatExchange(res))
		return nil
	})
}

func isDocument(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/html", "text/plain", "text/xml", "application/xhtml+xml", "application/xml":
		return true
	}
	return false
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func documentName(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return "document"
	}
	name := unsafeName.ReplaceAllString(path.Base(parsed.Path), "_")
	if name == "" || name == "." || name == "_" {
		return "index"
	}
	return name
}
