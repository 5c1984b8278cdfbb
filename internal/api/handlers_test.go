package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus/corpustest"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
)

func newTestServer(t *testing.T, loader corpus.Loader, cfg Config) *Server {
	t.Helper()
	if loader == nil {
		loader = corpus.Static(corpustest.Mixed())
	}
	svc := service.New(loader, service.Config{
		Source:       "test",
		DefaultLimit: 5,
		MaxLimit:     10,
		CacheTTL:     time.Minute,
	})
	s, err := New(svc, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// rawResponse mirrors APIResponse with Data left undecoded.
type rawResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func do(t *testing.T, s *Server, method, target string) (*httptest.ResponseRecorder, rawResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp rawResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, target, w.Body.String(), err)
	}
	return w, resp
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	w, resp := do(t, s, http.MethodGet, "/")
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("GET / = %d %+v", w.Code, resp)
	}
	if !strings.Contains(string(resp.Data), "/search") {
		t.Errorf("endpoint list missing /search: %s", resp.Data)
	}

	w, resp = do(t, s, http.MethodGet, "/nowhere")
	if w.Code != http.StatusNotFound || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("GET /nowhere = %d %+v", w.Code, resp.Error)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	w, resp := do(t, s, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var data struct {
		Status     string `json:"status"`
		IndexBuilt bool   `json:"index_built"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Status != "ok" || data.IndexBuilt {
		t.Errorf("health = %+v", data)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("security headers missing: X-Content-Type-Options = %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
}

func TestHandleSearch(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	w, resp := do(t, s, http.MethodGet, "/search?q=light")
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d, error = %+v", w.Code, resp.Error)
	}
	var data struct {
		Results []struct {
			Ref     string `json:"ref"`
			Snippet string `json:"snippet"`
		} `json:"results"`
		Total int `json:"total"`
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Total == 0 || len(data.Results) == 0 {
		t.Fatal("no results for light")
	}
	if data.Limit != 5 {
		t.Errorf("Limit = %d, want service default 5", data.Limit)
	}
	if resp.Meta.Total != data.Total {
		t.Errorf("meta.total = %d, want %d", resp.Meta.Total, data.Total)
	}
	if !strings.HasPrefix(data.Results[0].Ref, "Genesis 1:") {
		t.Errorf("first ref = %q", data.Results[0].Ref)
	}
}

func TestHandleSearchFilters(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	tests := []struct {
		query    string
		wantBook string
	}{
		{"/search?q=beginning&book=Jn", "John"},
		{"/search?q=beginning&book=gen", "Genesis"},
		{"/search?q=the&scope=apocrypha", "Tobit"},
		{"/search?q=the&scope=PSEUDEPIGRAPHA", "1 Enoch"},
	}
	for _, tt := range tests {
		w, resp := do(t, s, http.MethodGet, tt.query)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status %d %+v", tt.query, w.Code, resp.Error)
			continue
		}
		var data struct {
			Results []struct {
				Book string `json:"book"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			t.Fatal(err)
		}
		if len(data.Results) == 0 {
			t.Errorf("%s: no results", tt.query)
		}
		for _, r := range data.Results {
			if r.Book != tt.wantBook {
				t.Errorf("%s: result from %s, want %s", tt.query, r.Book, tt.wantBook)
			}
		}
	}
}

func TestHandleSearchLimitClamped(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	_, resp := do(t, s, http.MethodGet, "/search?q=the&limit=1000")
	var data struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Limit != 10 {
		t.Errorf("Limit = %d, want clamped to 10", data.Limit)
	}
}

func TestHandleSearchErrors(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	tests := []struct {
		target     string
		wantStatus int
		wantCode   string
	}{
		{"/search", http.StatusBadRequest, "MISSING_QUERY"},
		{"/search?q=%20%20", http.StatusBadRequest, "MISSING_QUERY"},
		{"/search?q=God&scope=gospels", http.StatusBadRequest, "INVALID_SCOPE"},
		{"/search?q=God&limit=ten", http.StatusBadRequest, "INVALID_PARAM"},
		{"/search?q=God&limit=0", http.StatusBadRequest, "INVALID_PARAM"},
		{"/search?q=God&offset=-1", http.StatusBadRequest, "INVALID_PARAM"},
		{"/search?q=" + strings.Repeat("a", 501), http.StatusBadRequest, "QUERY_TOO_LONG"},
	}
	for _, tt := range tests {
		w, resp := do(t, s, http.MethodGet, tt.target)
		if w.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.target, w.Code, tt.wantStatus)
		}
		if resp.Success || resp.Error == nil || resp.Error.Code != tt.wantCode {
			t.Errorf("%s: error = %+v, want %s", tt.target, resp.Error, tt.wantCode)
		}
	}

	w, resp := do(t, s, http.MethodPost, "/search?q=God")
	if w.Code != http.StatusMethodNotAllowed || resp.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("POST /search = %d %+v", w.Code, resp.Error)
	}
}

func TestHandleSearchCorpusUnavailable(t *testing.T) {
	loader := corpus.LoaderFunc(func(ctx context.Context) (*corpus.Corpus, error) {
		return nil, errors.New("disk on fire")
	})
	s := newTestServer(t, loader, Config{})

	w, resp := do(t, s, http.MethodGet, "/search?q=God")
	if w.Code != http.StatusServiceUnavailable || resp.Error.Code != "CORPUS_UNAVAILABLE" {
		t.Errorf("status = %d, error = %+v", w.Code, resp.Error)
	}
	if strings.Contains(resp.Error.Message, "disk on fire") {
		t.Error("loader error leaked to client")
	}
}

func TestHandleReferences(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	w, resp := do(t, s, http.MethodGet, "/references?q="+url.QueryEscape("Gen 1:1; Atlantis 4; 1 Cor 13"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var data service.ParsedReferences
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.References) != 2 || data.Formatted[1] != "1 Corinthians 13" {
		t.Errorf("parsed = %+v", data)
	}
	if len(data.Rejected) != 1 || data.Rejected[0] != "Atlantis 4" {
		t.Errorf("rejected = %q", data.Rejected)
	}

	w, resp = do(t, s, http.MethodGet, "/references")
	if w.Code != http.StatusBadRequest || resp.Error.Code != "MISSING_QUERY" {
		t.Errorf("missing q: %d %+v", w.Code, resp.Error)
	}
}

func TestHandleVerses(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	w, resp := do(t, s, http.MethodGet, "/verses?ref="+url.QueryEscape("Gen 1:2-3"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %+v", w.Code, resp.Error)
	}
	var data service.Passage
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Formatted != "Genesis 1:2-3" || len(data.Verses) != 2 {
		t.Errorf("passage = %s with %d verses", data.Formatted, len(data.Verses))
	}

	tests := []struct {
		target   string
		status   int
		wantCode string
	}{
		{"/verses", http.StatusBadRequest, "MISSING_PARAMS"},
		{"/verses?ref=Atlantis+1", http.StatusNotFound, "NOT_FOUND"},
		{"/verses?ref=Genesis", http.StatusBadRequest, "INVALID_PARAM"},
	}
	for _, tt := range tests {
		w, resp := do(t, s, http.MethodGet, tt.target)
		if w.Code != tt.status || resp.Error == nil || resp.Error.Code != tt.wantCode {
			t.Errorf("%s = %d %+v, want %d %s", tt.target, w.Code, resp.Error, tt.status, tt.wantCode)
		}
	}
}

func TestHandleBooks(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	w, resp := do(t, s, http.MethodGet, "/books?group=Canon")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Meta.Total != 66 {
		t.Errorf("canon total = %d, want 66", resp.Meta.Total)
	}

	_, all := do(t, s, http.MethodGet, "/books")
	if all.Meta.Total <= 66 {
		t.Errorf("all books = %d, want more than canon", all.Meta.Total)
	}

	w, resp = do(t, s, http.MethodGet, "/books?group=gospels")
	if w.Code != http.StatusBadRequest || resp.Error.Code != "INVALID_PARAM" {
		t.Errorf("bad group = %d %+v", w.Code, resp.Error)
	}
}

func TestHandleStatsAndClear(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	do(t, s, http.MethodGet, "/search?q=God")
	_, resp := do(t, s, http.MethodGet, "/stats")
	var st service.Stats
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		t.Fatal(err)
	}
	if !st.IndexBuilt || st.TotalVerses != 11 || st.Fingerprint == "" || st.Source != "test" {
		t.Errorf("stats = %+v", st)
	}

	w, resp := do(t, s, http.MethodDelete, "/index")
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE /index = %d", w.Code)
	}
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		t.Fatal(err)
	}
	if st.IndexBuilt || st.TotalVerses != 0 {
		t.Errorf("stats after clear = %+v", st)
	}

	w, _ = do(t, s, http.MethodGet, "/index")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /index = %d, want 405", w.Code)
	}
}

func TestRespondServiceErrorCancelled(t *testing.T) {
	w := httptest.NewRecorder()
	respondServiceError(w, httptest.NewRequest(http.MethodGet, "/search", nil), context.Canceled)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	w = httptest.NewRecorder()
	respondServiceError(w, httptest.NewRequest(http.MethodGet, "/search", nil), errors.New("boom"))
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "boom") {
		t.Errorf("unknown error = %d %s", w.Code, w.Body.String())
	}
}
