package telemetry

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("ubereats_client", rec)

	scoped.ReportBroken("client.fetch-page", errors.New("boom"))
	scoped.ReportCount("pager.pages", 3)

	broken := rec.Find("broken", "client.fetch-page")
	require.Len(t, broken, 1)
	require.Equal(t, "ubereats_client: client.fetch-page", broken[0].ID)

	counts := rec.Find("count", "pages")
	require.Len(t, counts, 1)
	require.EqualValues(t, 3, counts[0].Count)
	require.Empty(t, rec.Find("warning", ""))
}

func TestSlogAPI(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	api := SlogAPI{Logger: slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	api.ReportWarning("extract.empty-state", 0, "No businesses available")
	api.ReportBroken("client.fetch-page", errors.New("status 500"))

	out := buf.String()
	require.Contains(t, out, "id=extract.empty-state")
	require.Contains(t, out, `params.1="No businesses available"`)
	require.Contains(t, out, `err="status 500"`)
}

func TestSlogAPICountsAtDebugLevel(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	api := SlogAPI{Logger: slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))}

	api.ReportCount("pager.pages", 4)
	api.ReportDebug("extract.missing-name", 0, 3)
	require.Empty(t, buf.String())

	api.ReportWarning("extract.empty-state", 0, "No businesses available")
	require.Contains(t, buf.String(), "level=WARN")
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := &Recorder{}
	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, rec)

	_, err := client.R().Get("/")
	require.NoError(t, err)
	require.Len(t, rec.Find("debug", report_resty_request), 1)
	require.Len(t, rec.Find("debug", report_resty_response), 1)

	server.Close()
	_, err = client.R().Get("/")
	require.Error(t, err)
	require.Len(t, rec.Find("broken", report_resty_response), 1)
}
