package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/mesh"
	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/preview"
	"github.com/piwi3910/TrayForge/internal/project"
	"github.com/piwi3910/TrayForge/internal/worker"
)

// Request selects one box of a project. BoxID, when set, wins over Box.
type Request struct {
	Project json.RawMessage `json:"project"`
	Box     int             `json:"box"`
	BoxID   string          `json:"boxId,omitempty"`
}

// ValidateResponse is the body of /api/v1/validate.
type ValidateResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    faults.Code `json:"code,omitempty"`
	Error   string      `json:"error"`
	Details []string    `json:"details,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	p, idx, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.pipeline
	opts.LayoutOnly = true
	res, err := generate.Generate(r.Context(), p, idx, opts)
	switch {
	case faults.Is(err, faults.ErrCodeValidation):
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: false, Errors: faults.Details(err)})
	case err != nil:
		s.writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Errors: []string{}, Warnings: res.Warnings})
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	p, idx, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.pipeline
	opts.LayoutOnly = true
	res, err := generate.Generate(r.Context(), p, idx, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	p, idx, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.pipeline
	opts.LayoutOnly = true
	res, err := generate.Generate(r.Context(), p, idx, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := preview.Render(&buf, res, preview.Options{}); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleSTL builds the solids through the worker and streams one part.
func (s *Server) handleSTL(w http.ResponseWriter, r *http.Request) {
	part := strings.ToLower(chi.URLParam(r, "part"))
	p, idx, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	_, reply := s.worker.Submit(r.Context(), p, idx)
	var resp worker.Response
	select {
	case resp = <-reply:
	case <-r.Context().Done():
		return
	}
	if errors.Is(resp.Err, worker.ErrSuperseded) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: resp.Err.Error()})
		return
	}
	if resp.Err != nil {
		s.writeError(w, resp.Err)
		return
	}

	m, name, err := selectPart(resp.Result, part)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := mesh.WriteSTL(&buf, name, m); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "model/stl")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".stl"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// selectPart picks box, lid, assembly or tray-<letter> from a result.
func selectPart(res *generate.BoxResult, part string) (*mesh.Mesh, string, error) {
	switch part {
	case "box":
		return res.BoxMesh, res.Box.Name + " box", nil
	case "lid":
		return res.LidMesh, res.Box.Name + " lid", nil
	case "assembly":
		return res.Assembly(true), res.Box.Name, nil
	}
	if letter, ok := strings.CutPrefix(part, "tray-"); ok {
		for _, tr := range res.Trays {
			if strings.EqualFold(tr.Letter, letter) {
				return tr.Mesh, tr.Letter + " " + tr.Tray.Name, nil
			}
		}
		return nil, "", faults.New(faults.ErrCodeNotFound, "no tray with letter %q in box %q", strings.ToUpper(letter), res.Box.Name)
	}
	return nil, "", faults.New(faults.ErrCodeInvalidInput, "unknown part %q (want box, lid, assembly or tray-<letter>)", part)
}

// decodeRequest reads the body, normalizes the project and resolves the
// box index.
func decodeRequest(w http.ResponseWriter, r *http.Request) (model.Project, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return model.Project{}, 0, faults.Wrap(faults.ErrCodeInvalidInput, err, "decode request")
	}
	if len(req.Project) == 0 {
		return model.Project{}, 0, faults.New(faults.ErrCodeInvalidInput, "request has no project")
	}
	p, err := project.Unmarshal(req.Project, project.FormatJSON)
	if err != nil {
		return model.Project{}, 0, faults.Wrap(faults.ErrCodeInvalidInput, err, "decode project")
	}

	idx := req.Box
	if req.BoxID != "" {
		idx = project.NewStore(p, nil).BoxIndex(req.BoxID)
		if idx < 0 {
			return model.Project{}, 0, faults.New(faults.ErrCodeNotFound, "box %q not found", req.BoxID)
		}
	}
	return p, idx, nil
}

func statusFor(code faults.Code) int {
	switch code {
	case faults.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case faults.ErrCodeInvalidInput, faults.ErrCodeInvalidShapeRef:
		return http.StatusBadRequest
	case faults.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := faults.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Error: err.Error(), Details: faults.Details(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
