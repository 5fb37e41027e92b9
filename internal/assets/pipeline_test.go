package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"digicards/internal/catalog"
	"digicards/internal/components/telemetry"
	"digicards/internal/source"
	"digicards/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

type imageServer struct {
	*httptest.Server
	requests atomic.Int64
}

func newImageServer(t testing.TB) *imageServer {
	server := &imageServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/images/", func(w http.ResponseWriter, r *http.Request) {
		server.requests.Add(1)
		switch {
		case strings.HasSuffix(r.URL.Path, "missing.png"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasSuffix(r.URL.Path, "broken.png"):
			w.Write([]byte("definitely not a png"))
		default:
			w.Header().Set("content-type", "image/png")
			w.Write(testutil.PNG(4, 3))
		}
	})
	server.Server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newPipeline(t testing.TB, server *imageServer, tel telemetry.API) (*Pipeline, string) {
	client, err := source.NewClient(source.Options{
		BaseUrl: server.URL + "/",
		Timeout: time.Second * 5,
	}, tel)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "img")
	pipeline, err := NewPipeline(client, Options{Dir: dir, Workers: 3}, tel)
	if err != nil {
		t.Fatal(err)
	}
	return pipeline, dir
}

func card(server *imageServer, number, file string) catalog.CardRecord {
	record := catalog.CardRecord{CardNumber: number}
	if file != "" {
		record.ImageUrl = catalog.Present(server.URL + "/images/cardlist/card/" + file)
	}
	return record
}

func listDir(t testing.TB, dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun(t *testing.T) {
	server := newImageServer(t)
	tel := telemetry.NewRecorder()
	pipeline, dir := newPipeline(t, server, tel)

	records := []catalog.CardRecord{
		card(server, "BT1-001", "BT1-001.png"),
		card(server, "BT1-001_P1", "BT1-001_P1.png"),
		card(server, "BT1-002", "BT1-002.png?v=2"),
		card(server, "BT1-003", ""),
		card(server, "BT1-004", "missing.png"),
		card(server, "BT1-005", "broken.png"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	report := pipeline.Run(ctx, records)

	require.Equal(t, Progress{
		Total:     6,
		Submitted: 5,
		Completed: 5,
		Succeeded: 3,
		Failed:    2,
		NoImage:   1,
	}, report.Progress)
	require.Equal(t, report.Progress, pipeline.Progress())

	failed := map[string]bool{}
	for _, f := range report.Failures {
		failed[f.CardNumber] = true
	}
	require.Equal(t, map[string]bool{"BT1-004": true, "BT1-005": true}, failed)
	require.Len(t, tel.Reports(telemetry.KindBroken, "pipeline.process"), 2)

	completed, ok := tel.LastCount("pipeline.completed")
	require.True(t, ok)
	require.Equal(t, int64(5), completed)

	require.ElementsMatch(
		t,
		[]string{"BT1-001.webp", "BT1-001_P1.webp", "BT1-002.webp"},
		listDir(t, dir),
	)

	f, err := os.Open(filepath.Join(dir, "BT1-001_P1.webp"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := webp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 4, img.Bounds().Dx())
	require.Equal(t, 3, img.Bounds().Dy())
}

func TestRunSkipsExisting(t *testing.T) {
	server := newImageServer(t)
	pipeline, _ := newPipeline(t, server, telemetry.NewRecorder())

	records := []catalog.CardRecord{
		card(server, "BT1-001", "BT1-001.png"),
		card(server, "BT1-002", "BT1-002.png"),
		card(server, "BT1-003", "BT1-003.png"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	first := pipeline.Run(ctx, records)
	require.Equal(t, int64(3), first.Succeeded)
	require.Equal(t, int64(3), server.requests.Load())

	second := pipeline.Run(ctx, records)
	require.Equal(t, Progress{Total: 3, Skipped: 3}, second.Progress)
	require.Empty(t, second.Failures)
	require.Equal(t, int64(3), server.requests.Load())
}

func TestRunCancelled(t *testing.T) {
	server := newImageServer(t)
	pipeline, dir := newPipeline(t, server, telemetry.NewRecorder())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := pipeline.Run(ctx, []catalog.CardRecord{
		card(server, "BT1-001", "BT1-001.png"),
		card(server, "BT1-002", "BT1-002.png"),
	})
	require.Zero(t, report.Submitted)
	require.Zero(t, report.Completed)
	require.Zero(t, server.requests.Load())
	require.Empty(t, listDir(t, dir))
}

func TestFileName(t *testing.T) {
	testCases := []struct {
		cardNumber string
		expect     string
	}{
		{cardNumber: "BT1-001", expect: "BT1-001.webp"},
		{cardNumber: "BT1-001_P1", expect: "BT1-001_P1.webp"},
		{cardNumber: "../BT1-001", expect: "..%2FBT1-001.webp"},
		{cardNumber: `a\b/c`, expect: "a%5Cb%2Fc.webp"},
		{cardNumber: "BT1%2F001", expect: "BT1%252F001.webp"},
		{cardNumber: "..", expect: "%2E%2E.webp"},
		{cardNumber: "", expect: "%.webp"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expect, FileName(test.cardNumber), test.cardNumber)
	}

	seen := map[string]string{}
	for _, cardNumber := range []string{"BT1/001", "BT1_001", "BT1%2F001", "BT1:001", "BT1\\001", ".", "%2E"} {
		name := FileName(cardNumber)
		other, ok := seen[name]
		require.False(t, ok, "%q and %q share %s", cardNumber, other, name)
		require.Equal(t, name, filepath.Base(name))
		seen[name] = cardNumber
	}
}
