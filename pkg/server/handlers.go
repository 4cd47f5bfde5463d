package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/buildinfo"
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/materials"
	"github.com/matzehuels/transfocator/pkg/pipeline"
	"github.com/matzehuels/transfocator/pkg/report"
	"github.com/matzehuels/transfocator/pkg/store"
)

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type runResponse struct {
	ID     string         `json:"id"`
	Report *report.Report `json:"report"`
}

type runSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name,omitempty"`
	CreatedAt    string  `json:"created_at"`
	BeamlineHash string  `json:"beamline_hash"`
	Energy       float64 `json:"energy"`
	Convention   string  `json:"convention"`
}

type constantsResponse struct {
	Material          string  `json:"material"`
	Density           float64 `json:"density"`
	Energy            float64 `json:"energy"`
	Delta             float64 `json:"delta"`
	Beta              float64 `json:"beta"`
	AttenuationLength float64 `json:"atlen"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.Logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
	}
	// Keep the cause in the message; only the code prefix is redundant.
	msg := strings.TrimPrefix(err.Error(), string(code)+": ")
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks that the archive backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.Store != nil {
		if _, err := s.Store.List(r.Context(), 1); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Code: errors.ErrCodeInternal, Message: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, beamline.Presets())
}

// calculate decodes the request and runs the pipeline. It returns the
// decoded beamline alongside the result so callers can archive it.
func (s *Server) calculate(w http.ResponseWriter, r *http.Request) (*beamline.Beamline, *pipeline.Result, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	bl, err := beamline.Parse(body, beamline.FormatJSON)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode beamline")
		}
		return nil, nil, err
	}

	opts, err := optionsFromQuery(r, bl)
	if err != nil {
		return nil, nil, err
	}
	opts.Logger = s.Logger
	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		return nil, nil, err
	}
	return bl, res, nil
}

func optionsFromQuery(r *http.Request, bl *beamline.Beamline) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Beamline:   bl,
		Convention: q.Get("convention"),
	}
	if v := q.Get("symmetry"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "symmetry: %q is not a boolean", v)
		}
		opts.Symmetry = b
	}
	if v := q.Get("energy"); v != "" {
		e, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "energy: %q is not a number", v)
		}
		opts.Energy = e
	}
	if v := q.Get("refresh"); v != "" {
		opts.Refresh, _ = strconv.ParseBool(v)
	}
	return opts, nil
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	_, res, err := s.calculate(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Report)
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "run archive is not configured"))
		return
	}
	bl, res, err := s.calculate(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	blJSON, err := json.Marshal(bl.WithEnergy(res.Report.Energy))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode beamline"))
		return
	}
	run, err := store.NewRun(r.URL.Query().Get("name"), blJSON, res.BeamlineHash, res.Report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Store.Put(r.Context(), run); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "archive run"))
		return
	}
	s.Logger.Info("archived run", "id", run.ID, "hash", res.BeamlineHash[:12])
	writeJSON(w, http.StatusCreated, runResponse{ID: run.ID, Report: res.Report})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "run archive is not configured"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit: %q is not a non-negative integer", v))
			return
		}
		limit = n
	}
	runs, err := s.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]runSummary, len(runs))
	for i, run := range runs {
		out[i] = runSummary{
			ID:           run.ID,
			Name:         run.Name,
			CreatedAt:    run.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			BeamlineHash: run.BeamlineHash,
			Energy:       run.Energy,
			Convention:   run.Convention,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "run archive is not configured"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleConstants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	material := strings.TrimSpace(q.Get("material"))
	if err := errors.ValidateMaterial(material); err != nil {
		s.writeError(w, r, err)
		return
	}
	energy, err := strconv.ParseFloat(q.Get("energy"), 64)
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "energy: %q is not a number", q.Get("energy")))
		return
	}
	if err := errors.ValidatePositive("energy", energy); err != nil {
		s.writeError(w, r, err)
		return
	}

	var density float64
	if v := q.Get("density"); v != "" {
		density, err = strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "density: %q is not a number", v))
			return
		}
		if err := errors.ValidatePositive("density", density); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		density, err = materials.DensityOf(r.Context(), s.Provider, material)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	c, err := s.Provider.Lookup(r.Context(), material, density, energy)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeLookupFailed, err, "optical constants for %s at %g eV", material, energy)
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, constantsResponse{
		Material:          material,
		Density:           density,
		Energy:            energy,
		Delta:             c.Delta,
		Beta:              c.Beta,
		AttenuationLength: c.AttenuationLength,
	})
}
