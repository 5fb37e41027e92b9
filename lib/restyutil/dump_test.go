package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpDocuments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte("<html>cards</html>"))
	})
	mux.HandleFunc("/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	if err != nil {
		t.Fatal(err)
	}

	client := resty.New()
	DumpDocuments(client, output)

	_, err = client.R().Get(server.URL + "/page")
	require.NoError(t, err)
	_, err = client.R().Get(server.URL + "/image.png")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "0001-page.txt", entries[0].Name())
	require.Contains(t, string(contents), "> GET "+server.URL+"/page")
	require.Contains(t, string(contents), "< 200")
	require.Contains(t, string(contents), "<html>cards</html>")
}
