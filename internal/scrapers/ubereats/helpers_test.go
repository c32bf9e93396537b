package ubereats

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

const testLocationJSON = `{"address":{"title":"10 Jasper Ave"},"latitude":53.5461,"longitude":-113.4938,"reference":"ref-1"}`

func testCookies() string {
	return "jwt-session=abc123; uev2.loc=" + url.PathEscape(testLocationJSON) + "; theme=dark"
}

func testClientOptions(baseURL string) ClientOptions {
	return ClientOptions{
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		Retries:           2,
		RetryWait:         time.Millisecond,
		RetryMaxWait:      5 * time.Millisecond,
		RequestsPerSecond: 1000,
	}
}

type feedCall struct {
	Query   url.Values
	Cookies map[string]string
	Header  http.Header
	Body    map[string]any
}

type feedResponse struct {
	Status int
	Body   string
}

// feedServer serves canned responses in order, repeating the last one.
type feedServer struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []feedCall
	responses []feedResponse
}

func newFeedServer(t testing.TB, responses ...feedResponse) *feedServer {
	s := &feedServer{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != feedPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		call := feedCall{
			Query:   r.URL.Query(),
			Cookies: map[string]string{},
			Header:  r.Header.Clone(),
		}
		for _, c := range r.Cookies() {
			call.Cookies[c.Name] = c.Value
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &call.Body); err != nil {
			t.Errorf("decode request body: %v", err)
		}

		s.mu.Lock()
		s.calls = append(s.calls, call)
		res := s.responses[min(len(s.calls), len(s.responses))-1]
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.Status)
		_, _ = w.Write([]byte(res.Body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *feedServer) Calls() []feedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]feedCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func respondOK(body string) feedResponse {
	return feedResponse{Status: http.StatusOK, Body: body}
}

func respondStatus(code int) feedResponse {
	return feedResponse{Status: code, Body: `{"status":"failure"}`}
}

func storeJSON(name string) string {
	return `{"type":"REGULAR_STORE","store":{"title":{"text":` + quote(name) + `}}}`
}

func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

// feedJSON builds a feed response, `hasMore` is omitted when empty.
func feedJSON(hasMore string, cursor string, entries ...string) string {
	var b strings.Builder
	b.WriteString(`{"status":"success","data":{"feedItems":[`)
	b.WriteString(strings.Join(entries, ","))
	b.WriteString(`]`)
	if hasMore != "" || cursor != "" {
		b.WriteString(`,"paginationInfo":{`)
		var fields []string
		if hasMore != "" {
			fields = append(fields, `"hasMore":`+hasMore)
		}
		if cursor != "" {
			fields = append(fields, `"cursor":`+quote(cursor))
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString(`}`)
	}
	b.WriteString(`}}`)
	return b.String()
}
