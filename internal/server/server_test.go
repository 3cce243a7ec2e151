package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/flowviz/sankey/pkg/pipeline"
	"github.com/flowviz/sankey/pkg/store"
)

func testServer() *Server {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewServer(pipeline.NewRunner(nil, logger), store.NewMemoryStore(), logger)
}

const chainBody = `{
	"graph": {
		"nodes": [{"id": "a"}, {"id": "b"}, {"id": "c"}],
		"links": [
			{"source": "a", "target": "b", "value": 10},
			{"source": "b", "target": "c", "value": 10}
		]
	}
}`

func TestHandleRender(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(chainBody))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Error("response is not SVG")
	}
}

// An explicit empty formats array falls back to the default format instead
// of erroring or reading past the end of the slice.
func TestHandleRender_EmptyFormats(t *testing.T) {
	s := testServer()
	body := `{
		"graph": {
			"nodes": [{"id": "a"}, {"id": "b"}],
			"links": [{"source": "a", "target": "b", "value": 10}]
		},
		"options": {"formats": []}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Error("response is not SVG")
	}
}

func TestHandleRender_InvalidFormat(t *testing.T) {
	s := testServer()
	body := `{
		"graph": {
			"nodes": [{"id": "a"}, {"id": "b"}],
			"links": [{"source": "a", "target": "b", "value": 10}]
		},
		"options": {"formats": ["webp"]}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body not JSON: %v", err)
	}
	if resp.Code != "INVALID_FORMAT" {
		t.Errorf("error code = %q, want INVALID_FORMAT", resp.Code)
	}
}

func TestHandleRender_InvalidGraph(t *testing.T) {
	s := testServer()
	body := `{"graph": {"nodes": [{"id": "a"}], "links": [{"source": "a", "target": "ghost", "value": 1}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body not JSON: %v", err)
	}
	if resp.Code != "UNKNOWN_NODE" {
		t.Errorf("error code = %q, want UNKNOWN_NODE", resp.Code)
	}
}

func TestHandleRender_Cycle(t *testing.T) {
	s := testServer()
	body := `{"graph": {
		"nodes": [{"id": "a"}, {"id": "b"}],
		"links": [
			{"source": "a", "target": "b", "value": 1},
			{"source": "b", "target": "a", "value": 1}
		]
	}}`
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleLayout(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader(chainBody))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var layout struct {
		Nodes []struct {
			ID string  `json:"id"`
			X0 float64 `json:"x0"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &layout); err != nil {
		t.Fatalf("layout body not JSON: %v", err)
	}
	if len(layout.Nodes) != 3 {
		t.Errorf("layout has %d nodes, want 3", len(layout.Nodes))
	}
}

func TestDiagramCRUD(t *testing.T) {
	s := testServer()
	body := `{"name": "energy", "graph": {
		"nodes": [{"id": "a"}, {"id": "b"}],
		"links": [{"source": "a", "target": "b", "value": 5}]
	}}`

	// Create
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/diagrams/", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created store.Diagram
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("create body not JSON: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created diagram has no ID")
	}

	// Get
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagrams/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	// List
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagrams/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("list status = %d", rec.Code)
	}
	var list []store.Diagram
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Errorf("list = %v (err %v), want one diagram", list, err)
	}

	// Render stored diagram
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagrams/"+created.ID+"/render?format=svg&width=400", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("render status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Error("stored render is not SVG")
	}

	// Delete
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/diagrams/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}

	// Get after delete
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagrams/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
