package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/pricing"
	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/internal/selection"
	"github.com/sells-group/grass-estimator/internal/workflow"
	"github.com/sells-group/grass-estimator/pkg/places"
)

func (s *Server) newMachine(id string) *workflow.Machine {
	sess := workflow.NewSession(id, s.deps.Snapshots, s.deps.Pricing)
	opts := []workflow.Option{workflow.WithBuilder(s.deps.Builder)}
	if s.deps.Notifier != nil {
		opts = append(opts, workflow.WithNotifier(s.deps.Notifier))
	}
	return workflow.NewMachine(sess, s.deps.Submitter, opts...)
}

// stateView is the JSON shape of a workflow state.
type stateView struct {
	workflow.State
	PreviewURLs    []string `json:"previewUrls"`
	FormattedPrice string   `json:"formattedPrice,omitempty"`
}

func (s *Server) view(st workflow.State) stateView {
	v := stateView{State: st, PreviewURLs: make([]string, 0, len(st.Previews))}
	for _, p := range st.Previews {
		v.PreviewURLs = append(v.PreviewURLs, "/previews/"+strings.TrimPrefix(p, selection.PreviewScheme))
	}
	if st.Result != nil && s.deps.Formatter != nil {
		v.FormattedPrice = s.deps.Formatter.Format(st.Result.Price)
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionRate reads the rate through the session's cache, so a failed load
// only affects that session.
func (s *Server) sessionRate(r *http.Request) *float64 {
	m := s.sessions.get(sessionIDFrom(r.Context()))
	return m.Session().Pricing.Rate(r.Context())
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	rate := s.sessionRate(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"pricePerM2": rate,
		"available":  rate != nil,
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AreaM2 *float64 `json:"areaM2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AreaM2 == nil || *req.AreaM2 < 0 {
		writeError(w, http.StatusBadRequest, "areaM2 must be a non-negative number")
		return
	}

	price := pricing.Price(req.AreaM2, s.sessionRate(r))
	resp := map[string]any{
		"areaM2":    *req.AreaM2,
		"price":     price,
		"formatted": "",
	}
	if s.deps.Formatter != nil {
		resp["formatted"] = s.deps.Formatter.Format(price)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Places == nil {
		writeError(w, http.StatusServiceUnavailable, "address suggestions are not configured")
		return
	}
	out, err := s.deps.Places.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		zap.L().Warn("server: address suggest", zap.Error(err))
		writeError(w, http.StatusBadGateway, "address lookup failed")
		return
	}
	if out == nil {
		out = []places.Suggestion{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	var (
		img   model.Image
		found bool
	)
	s.sessions.each(func(m *workflow.Machine) bool {
		img, found = m.Session().Previews.Open(handle)
		return !found
	})
	if !found {
		writeError(w, http.StatusNotFound, "preview not found")
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data) //nolint:errcheck
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	s.sessions.get(id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	m := s.sessions.get(sessionIDFrom(r.Context()))
	p, err := m.Session().Profiles.Load(r.Context())
	if err != nil {
		zap.L().Error("server: load profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no profile stored")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p model.ContactProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m := s.sessions.get(sessionIDFrom(r.Context()))
	fieldErrs, err := m.Session().Profiles.Persist(r.Context(), p)
	if err != nil {
		zap.L().Error("server: persist profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}
	if !fieldErrs.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	images, err := s.readImages(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ref := readReference(r)

	m := s.sessions.get(sessionIDFrom(r.Context()))

	// The attempt runs to completion even if the client goes away.
	st, err := m.Estimate(context.WithoutCancel(r.Context()), images, ref)
	if err != nil {
		s.writeBusy(w, m)
		return
	}

	status := http.StatusOK
	switch {
	case st.Status == workflow.StatusIdle && st.Error != "":
		status = http.StatusUnprocessableEntity
	case st.Status == workflow.StatusFailure:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, s.view(st))
}

func (s *Server) writeBusy(w http.ResponseWriter, m *workflow.Machine) {
	writeJSON(w, http.StatusConflict, s.view(m.State()))
}

func (s *Server) readImages(r *http.Request) ([]model.Image, error) {
	headers := r.MultipartForm.File[s.deps.Builder.FileField()]
	if len(headers) > selection.MaxImages {
		headers = headers[:selection.MaxImages]
	}

	images := make([]model.Image, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close() //nolint:errcheck
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", fh.Filename)
		}
		img, err := selection.FromBytes(fh.Filename, fh.Header.Get("Content-Type"), data)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// readReference returns the pair as entered. An unparsable height reads as
// zero, which the builder treats as absent.
func readReference(r *http.Request) *model.ReferenceObject {
	name := r.FormValue(request.FieldObjectName)
	raw := strings.TrimSpace(r.FormValue(request.FieldKnownHeight))
	if strings.TrimSpace(name) == "" && raw == "" {
		return nil
	}
	h, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		h = 0
	}
	return &model.ReferenceObject{Name: name, HeightMeters: h}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	m := s.sessions.get(sessionIDFrom(r.Context()))
	writeJSON(w, http.StatusOK, s.view(m.State()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	m := s.sessions.get(sessionIDFrom(r.Context()))
	st, err := m.Reset()
	if err != nil {
		s.writeBusy(w, m)
		return
	}
	writeJSON(w, http.StatusOK, s.view(st))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.remove(sessionIDFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
