package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/kdduha/sportsclass/internal/form"
	"github.com/kdduha/sportsclass/internal/models"
	"github.com/kdduha/sportsclass/internal/source"
)

type classifyService interface {
	Classify(ctx context.Context, src source.Source) (*models.Classification, error)
}

type APIHandler struct {
	service classifyService
	store   *form.Store
	cookie  string
}

func NewAPIHandler(service classifyService, store *form.Store, cookieName string) *APIHandler {
	return &APIHandler{
		service: service,
		store:   store,
		cookie:  cookieName,
	}
}

// Classify godoc
// @Summary Classify sports image
// @Description Classify an image given either as base64 string or as URL. Exactly one of image and image_url must be set.
// @Tags classify
// @Accept json
// @Produce json
// @Param request body models.ClassifyRequest true "Classify request"
// @Success 200 {object} models.ClassifyResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/classify [post]
func (h *APIHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req models.ClassifyRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %s", err), http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("request validation failed: %s", err), http.StatusBadRequest)
		return
	}

	src := source.FromURL(req.ImageURL)
	if img := strings.TrimSpace(req.Image); img != "" {
		data, err := base64.StdEncoding.DecodeString(img)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid base64 image: %s", err), http.StatusBadRequest)
			return
		}
		src = source.FromFile("upload", data)
	}

	res, err := h.service.Classify(r.Context(), src)
	if err != nil {
		http.Error(w, fmt.Sprintf("service error: %s", err), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, models.ClassifyResponse{
		Class:  res.Class,
		Label:  models.Label(res.Class),
		Cached: res.Cached,
	})
}

// Session godoc
// @Summary Form session state
// @Description Current state of the caller's form session, identified by the session cookie.
// @Tags form
// @Produce json
// @Success 200 {object} models.SessionState
// @Failure 404 {object} map[string]string
// @Router /api/session [get]
func (h *APIHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cookie)
	if err != nil {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}
	c, ok := h.store.Lookup(cookie.Value)
	if !ok {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}

	st := c.Snapshot()
	writeJSON(w, http.StatusOK, models.SessionState{
		FileName:   st.FileName,
		ImageURL:   st.ImageURL,
		Prediction: st.Prediction,
		Label:      st.Label(),
		Loading:    st.Loading,
		Dark:       st.Dark,
		CanSubmit:  st.CanSubmit(),
	})
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNoImage),
		errors.Is(err, models.ErrBothSources),
		errors.Is(err, source.ErrEmpty),
		errors.Is(err, source.ErrTooLarge),
		errors.Is(err, source.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode: %s", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
