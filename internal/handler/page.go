package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kdduha/sportsclass/internal/form"
	"github.com/kdduha/sportsclass/internal/source"
)

const defaultFormMemory = 32 << 20

type PageHandler struct {
	logger   *log.Logger
	store    *form.Store
	tmpl     *template.Template
	cookie   string
	refresh  time.Duration
	maxBytes int64

	// submissions outlive the request that started them
	baseCtx context.Context
	wg      sync.WaitGroup
}

type PageOptions struct {
	CookieName    string
	RefreshEvery  time.Duration
	MaxImageBytes int64
}

func NewPageHandler(
	ctx context.Context,
	logger *log.Logger,
	store *form.Store,
	tmpl *template.Template,
	opts PageOptions,
) *PageHandler {
	return &PageHandler{
		logger:   logger,
		store:    store,
		tmpl:     tmpl,
		cookie:   opts.CookieName,
		refresh:  opts.RefreshEvery,
		maxBytes: opts.MaxImageBytes,
		baseCtx:  ctx,
	}
}

type pageData struct {
	State      form.State
	PreviewURL template.URL
	Refresh    int
	Year       int
}

func (h *PageHandler) session(w http.ResponseWriter, r *http.Request) *form.Controller {
	var id string
	if c, err := r.Cookie(h.cookie); err == nil {
		id = c.Value
	}

	newID, c := h.store.Get(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return c
}

// Index renders the form page.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	st := h.session(w, r).Snapshot()

	data := pageData{
		State:   st,
		Refresh: max(1, int(h.refresh/time.Second)),
		Year:    time.Now().Year(),
	}
	if len(st.Preview) > 0 {
		data.PreviewURL = template.URL("data:" + st.PreviewType + ";base64," + source.Encode(st.Preview))
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		http.Error(w, fmt.Sprintf("failed to render: %s", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// SelectFile stores an uploaded file as the image source.
func (h *PageHandler) SelectFile(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	if err := h.applySelection(w, r, c); err != nil {
		h.logger.Printf("select file: %v\n", err)
	}
	h.backToForm(w, r)
}

// SelectURL stores an entered URL as the image source.
func (h *PageHandler) SelectURL(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	c.SetURL(r.FormValue("image_url"))
	h.backToForm(w, r)
}

// Submit applies any selection carried by the form and starts the
// submission in the background. Failures are logged only. A selection that
// cannot be applied starts nothing, so the previous source is never
// classified in its place.
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	if err := h.applySelection(w, r, c); err != nil {
		h.logger.Printf("submit: %v\n", err)
		h.backToForm(w, r)
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		_ = c.Submit(h.baseCtx)
	}()

	h.backToForm(w, r)
}

// Theme flips between dark and light mode.
func (h *PageHandler) Theme(w http.ResponseWriter, r *http.Request) {
	h.session(w, r).ToggleTheme()
	h.backToForm(w, r)
}

// Wait blocks until every background submission has returned.
func (h *PageHandler) Wait() {
	h.wg.Wait()
}

// applySelection reads the "image" file and "image_url" fields. A non-empty
// file wins over the url and a non-empty url replaces the file. A posted but
// blank url field clears the stored url and keeps any selected file.
// Browsers send an empty file part when no file is chosen, so that part
// never drops the current file.
func (h *PageHandler) applySelection(w http.ResponseWriter, r *http.Request, c *form.Controller) error {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	}
	memory := h.maxBytes
	if memory <= 0 {
		memory = defaultFormMemory
	}
	if err := r.ParseMultipartForm(memory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return fmt.Errorf("failed to parse form: %w", err)
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return fmt.Errorf("failed to read upload: %w", err)
		}
		if len(data) > 0 {
			c.SelectFile(header.Filename, data)
			return nil
		}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return fmt.Errorf("failed to read upload: %w", err)
	}

	if _, posted := r.Form["image_url"]; !posted {
		return nil
	}
	if u := strings.TrimSpace(r.FormValue("image_url")); u != "" {
		c.SetURL(u)
	} else {
		c.ClearURL()
	}
	return nil
}

func (h *PageHandler) backToForm(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
