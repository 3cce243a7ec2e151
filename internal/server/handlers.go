package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flowviz/sankey/pkg/errors"
	"github.com/flowviz/sankey/pkg/graph"
	"github.com/flowviz/sankey/pkg/pipeline"
	"github.com/flowviz/sankey/pkg/store"
)

// maxBodySize caps request bodies at 10MB.
const maxBodySize = 10 << 20

// renderRequest is the body of POST /api/render and /api/layout.
type renderRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// decodeRenderRequest parses a request body, layering the options over the
// documented defaults so omitted fields don't collapse to zero values.
func decodeRenderRequest(r *http.Request) (renderRequest, error) {
	req := renderRequest{Options: pipeline.DefaultOptions()}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return renderRequest{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if err := req.Graph.Validate(); err != nil {
		return renderRequest{}, err
	}
	// Validate here so the handler can trust the options it reads back, in
	// particular that Formats is non-empty after defaulting.
	if err := req.Options.ValidateAndSetDefaults(); err != nil {
		return renderRequest{}, err
	}
	return req, nil
}

// handleRender runs the pipeline and responds with the first requested
// format's artifact.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), req.Graph, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	format := req.Options.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// handleLayout runs layout only and responds with the computed geometry.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req.Options.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(r.Context(), req.Graph, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatJSON])
}

// =============================================================================
// Diagram CRUD
// =============================================================================

// diagramRequest is the body of POST and PUT /api/diagrams.
type diagramRequest struct {
	Name  string      `json:"name"`
	Graph graph.Graph `json:"graph"`
}

func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := req.Graph.Validate(); err != nil {
		writeError(w, err)
		return
	}

	d, err := s.store.Put(r.Context(), store.Diagram{Name: req.Name, Graph: req.Graph})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleUpdateDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	var req diagramRequest
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := req.Graph.Validate(); err != nil {
		writeError(w, err)
		return
	}

	d, err := s.store.Put(r.Context(), store.Diagram{ID: id, Name: req.Name, Graph: req.Graph})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []store.Diagram{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRenderDiagram renders a stored diagram. Layout and render options
// come from query parameters.
func (s *Server) handleRenderDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), d.Graph, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// optionsFromQuery builds pipeline options from URL query parameters.
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	q := r.URL.Query()

	if v := q.Get("format"); v != "" {
		opts.Formats = []string{v}
	}
	if v := q.Get("align"); v != "" {
		opts.Align = v
	}
	if v := q.Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v)
		}
		opts.Width = f
	}
	if v := q.Get("height"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid height %q", v)
		}
		opts.Height = f
	}
	if v := q.Get("refresh"); v == "true" || v == "1" {
		opts.Refresh = true
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}
