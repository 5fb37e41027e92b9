package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digicards/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/cardlist/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>cardlist</html>")
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetch(t *testing.T) {
	server := newTestServer(t)
	tel := telemetry.NewRecorder()

	client, err := NewClient(Options{
		BaseUrl: server.URL + "/cardlist/",
		Timeout: time.Second * 5,
	}, tel)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	page, err := client.Fetch(ctx, "?search=true")
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, page.OK())
	require.Equal(t, "<html>cardlist</html>", string(page.Body))
	require.Equal(t, "/cardlist/", page.Url.Path)

	page, err = client.Fetch(ctx, server.URL+"/missing")
	require.NoError(t, err)
	require.False(t, page.OK())
	require.Equal(t, http.StatusNotFound, page.Status)
}

func TestFetchBytesStatus(t *testing.T) {
	server := newTestServer(t)
	tel := telemetry.NewRecorder()

	client, err := NewClient(Options{BaseUrl: server.URL + "/cardlist/"}, tel)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.FetchBytes(context.Background(), server.URL+"/missing")
	require.ErrorIs(t, err, ErrTransport)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusNotFound, transportErr.Status)
	require.Len(t, tel.Reports(telemetry.KindWarning, report_client_fetch_bytes), 1)
}

func TestFetchConnectionFailure(t *testing.T) {
	server := newTestServer(t)
	link := server.URL + "/cardlist/"
	server.Close()

	tel := telemetry.NewRecorder()
	client, err := NewClient(Options{BaseUrl: link, Timeout: time.Second}, tel)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Fetch(context.Background(), link)
	require.ErrorIs(t, err, ErrTransport)
	require.NotEmpty(t, tel.Reports(telemetry.KindBroken, report_client_fetch))
}

func TestRateLimitedClient(t *testing.T) {
	server := newTestServer(t)
	client, err := NewClient(Options{
		BaseUrl:           server.URL + "/cardlist/",
		RequestsPerSecond: 100,
	}, telemetry.NewRecorder())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		page, err := client.Fetch(context.Background(), "")
		require.NoError(t, err)
		require.True(t, page.OK())
	}
}
