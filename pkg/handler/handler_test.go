package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	ggdb "github.com/yumyai/cytoterm/pkg/db"
	"github.com/yumyai/cytoterm/pkg/cytoband"
	"github.com/yumyai/cytoterm/pkg/model"
)

const table = "#chrom\tchromStart\tchromEnd\tname\tgieStain\n" +
	"chr1\t0\t2300000\tp36.33\tgneg\n" +
	"chr1\t2300000\t5300000\tp36.32\tgpos25\n" +
	"chr1\t121700000\t123400000\tp11.1\tacen\n" +
	"chr1\t143200000\t147500000\tq21.1\tgneg\n" +
	"chr13\t0\t4600000\tp13\tgvar\n" +
	"chr13\t18900000\t22600000\tq12.11\tgneg\n"

func newTestContext(t *testing.T) *DBContext {
	t.Helper()
	store, err := ggdb.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &DBContext{Store: store, Defaults: cytoband.Options{Header: cytoband.DefaultHeader()}}
}

func postConvert(dbctx *DBContext, query string, body []byte, gz bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert?"+query, bytes.NewReader(body))
	if gz {
		req.Header.Set("Content-Encoding", "gzip")
	}
	rec := httptest.NewRecorder()
	dbctx.ConvertHandler(rec, req)
	return rec
}

func TestConvertHandler(t *testing.T) {
	dbctx := newTestContext(t)

	rec := postConvert(dbctx, "link=true&levels=subBand", []byte(table), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	// chr13 has no p-arm sub-band.
	if got := rec.Header().Get("X-Cytoterm-Warnings"); got != "1" {
		t.Errorf("X-Cytoterm-Warnings = %q", got)
	}
	if len(rec.Header().Get("X-Cytoterm-Digest")) != 64 {
		t.Errorf("missing digest header")
	}
	if rec.Header().Get("X-Cytoterm-Release") != "" {
		t.Error("release header set without persist")
	}

	var doc struct {
		ResourceType string `json:"resourceType"`
		Count        int    `json:"count"`
		Links        []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"links"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if doc.ResourceType != "CodeSystem" || doc.Count == 0 {
		t.Errorf("unexpected document %+v", doc)
	}
	if len(doc.Links) != 1 || doc.Links[0].From != "1p11.1" || doc.Links[0].To != "1q21.1" {
		t.Errorf("links = %+v", doc.Links)
	}
}

func TestConvertHandlerGzipAndPersist(t *testing.T) {
	dbctx := newTestContext(t)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(table))
	zw.Close()

	rec := postConvert(dbctx, "persist=true&format=summary", buf.Bytes(), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	releaseID := rec.Header().Get("X-Cytoterm-Release")
	if releaseID == "" {
		t.Fatal("no release header")
	}
	if !strings.Contains(rec.Body.String(), "release:          "+releaseID) {
		t.Errorf("summary missing release:\n%s", rec.Body.String())
	}

	c, err := model.GetConcept(context.Background(), dbctx.Store.DB(), "13q12.11")
	if err != nil {
		t.Fatalf("stored concept: %v", err)
	}
	if c.ReleaseID != releaseID {
		t.Errorf("release = %s, want %s", c.ReleaseID, releaseID)
	}
}

func TestConvertHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		body     string
		noStore  bool
		wantCode int
		wantLine int
	}{
		{name: "malformed", body: "chr1\t0\t100\tp36.33\nchr1\tx\t9\tp36.32\n", wantCode: http.StatusBadRequest, wantLine: 2},
		{name: "invalid designation", body: "chr1\t0\t100\t36.33\n", wantCode: http.StatusBadRequest, wantLine: 1},
		{name: "conflict", body: "chr1\t0\t100\tp36.33\nchr1\t0\t120\tp36.33\n", wantCode: http.StatusBadRequest, wantLine: 2},
		{name: "bad query", query: "link=perhaps", body: table, wantCode: http.StatusBadRequest},
		{name: "persist without store", query: "persist=true", body: table, noStore: true, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbctx := newTestContext(t)
			if tt.noStore {
				dbctx.Store = nil
			}
			rec := postConvert(dbctx, tt.query, []byte(tt.body), false)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Status != "error" || resp.Error == "" || resp.Line != tt.wantLine {
				t.Errorf("error response = %+v", resp)
			}
		})
	}
}

func TestConvertHandlerBodyLimit(t *testing.T) {
	dbctx := newTestContext(t)
	dbctx.MaxBody = 16

	rec := postConvert(dbctx, "", []byte(table), false)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestConvertHandlerGzipInflatedLimit(t *testing.T) {
	dbctx := newTestContext(t)
	dbctx.MaxBody = 16 << 10

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(strings.Repeat("chr1\t0\t2300000\tp36.33\tgneg\n", 20000)))
	zw.Close()
	if int64(buf.Len()) >= dbctx.MaxBody {
		t.Fatalf("compressed body %d bytes is not below the limit", buf.Len())
	}

	rec := postConvert(dbctx, "", buf.Bytes(), true)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("client went away")
}

func TestConvertHandlerSummaryWriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	dbctx := newTestContext(t)
	dbctx.Logger = zap.New(core)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert?format=summary", strings.NewReader(table))
	dbctx.ConvertHandler(brokenWriter{httptest.NewRecorder()}, req)

	if logs.FilterMessage("Render summary").Len() != 1 {
		t.Errorf("summary write failure not logged: %v", logs.All())
	}
}

func getConcept(dbctx *DBContext, h http.HandlerFunc, path, code string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.SetPathValue("code", code)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestConceptHandlers(t *testing.T) {
	dbctx := newTestContext(t)

	// Nothing stored yet.
	if rec := getConcept(dbctx, dbctx.ConceptAPI, "/api/v1/concept/1p36", "1p36"); rec.Code != http.StatusNotFound {
		t.Fatalf("status before persist = %d", rec.Code)
	}

	if rec := postConvert(dbctx, "persist=true", []byte(table), false); rec.Code != http.StatusOK {
		t.Fatalf("persist failed: %s", rec.Body.String())
	}

	rec := getConcept(dbctx, dbctx.ConceptAPI, "/api/v1/concept/1p36", "1p36")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var c model.Concept
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatal(err)
	}
	if c.Level != "band" || len(c.Children) != 2 {
		t.Errorf("concept = %+v", c)
	}

	rec = getConcept(dbctx, dbctx.ConceptChildrenAPI, "/api/v1/concept/1p36/children", "1p36")
	var children []model.Concept
	if err := json.Unmarshal(rec.Body.Bytes(), &children); err != nil {
		t.Fatal(err)
	}
	if len(children) != 2 || children[0].Code != "1p36.33" {
		t.Errorf("children = %+v", children)
	}

	rec = getConcept(dbctx, dbctx.ConceptAPI, "/api/v1/concept/1p99", "1p99")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing concept status = %d", rec.Code)
	}

	rec = getConcept(dbctx, dbctx.ConceptPage, "/concept/1p36.33", "1p36.33")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `<a href="/concept/1p36">`) {
		t.Errorf("page status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestConceptWithoutStore(t *testing.T) {
	dbctx := &DBContext{}
	rec := getConcept(dbctx, dbctx.ConceptChildrenAPI, "/api/v1/concept/1p/children", "1p")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	dbctx := newTestContext(t)
	rec := httptest.NewRecorder()
	dbctx.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Health != "ok" || !resp.Store {
		t.Errorf("health = %+v", resp)
	}
}
