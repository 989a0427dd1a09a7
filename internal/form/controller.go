// Package form holds the transient state of the classification form: the
// selected image source, the last prediction, the loading flag and the theme.
package form

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kdduha/sportsclass/internal/models"
	"github.com/kdduha/sportsclass/internal/source"
)

// ErrSuperseded is returned by a submission whose outcome was discarded
// because a newer submission started before it resolved.
var ErrSuperseded = errors.New("submission superseded by a newer one")

type Classifier interface {
	Classify(ctx context.Context, src source.Source) (*models.Classification, error)
}

// State is a point-in-time copy of a controller.
type State struct {
	FileName    string
	ImageURL    string
	Prediction  string
	Loading     bool
	Dark        bool
	Preview     []byte
	PreviewType string
}

// Label is the prediction as displayed, empty when there is none.
func (s State) Label() string {
	return models.Label(s.Prediction)
}

// CanSubmit mirrors the disabled state of the submit button.
func (s State) CanSubmit() bool {
	return !s.Loading && (s.FileName != "" || s.ImageURL != "")
}

// Controller is the form of one browser session.
//
// Submissions may overlap. The newest submission cancels the previous one
// and is the only one allowed to write the prediction or clear loading.
type Controller struct {
	logger     *log.Logger
	classifier Classifier

	mu          sync.Mutex
	fileName    string
	fileData    []byte
	imageURL    string
	preview     []byte
	previewType string
	prediction  string
	loading     bool
	dark        bool
	gen         uint64
	cancel      context.CancelFunc
	lastSeen    time.Time
}

func NewController(logger *log.Logger, classifier Classifier) *Controller {
	return &Controller{
		logger:     logger,
		classifier: classifier,
		dark:       true,
		lastSeen:   time.Now(),
	}
}

// SelectFile picks a local file and clears any entered URL.
// An empty upload is ignored.
func (c *Controller) SelectFile(name string, data []byte) {
	if len(data) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fileName = name
	if c.fileName == "" {
		c.fileName = "upload"
	}
	c.fileData = data
	c.preview = data
	c.previewType = source.ContentType(data)
	c.imageURL = ""
}

// SetURL enters an image URL and clears any selected file.
func (c *Controller) SetURL(rawURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.imageURL = strings.TrimSpace(rawURL)
	c.fileName, c.fileData, c.preview, c.previewType = "", nil, nil, ""
}

// ClearURL drops the entered URL and leaves a selected file in place.
func (c *Controller) ClearURL() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.imageURL == "" {
		return
	}
	c.imageURL = ""
	if len(c.fileData) == 0 {
		c.preview, c.previewType = nil, ""
	}
}

func (c *Controller) ToggleTheme() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dark = !c.dark
}

func (c *Controller) source() source.Source {
	if len(c.fileData) > 0 {
		return source.FromFile(c.fileName, c.fileData)
	}
	if c.imageURL != "" {
		return source.FromURL(c.imageURL)
	}
	return source.Source{}
}

// Submit classifies the selected image and blocks until the round trip ends.
// With nothing selected it logs and returns models.ErrNoImage without any
// network call.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	src := c.source()
	if src.Empty() {
		c.mu.Unlock()
		c.logger.Printf("submit: %v\n", models.ErrNoImage)
		return models.ErrNoImage
	}

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.loading = true
	c.mu.Unlock()

	res, err := c.classifier.Classify(ctx, src)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Printf("submit: discarding stale result of submission %d\n", gen)
		return ErrSuperseded
	}
	c.loading = false
	c.cancel = nil

	if err != nil {
		c.logger.Printf("submit error: %v\n", err)
		return err
	}

	c.prediction = res.Class
	if src.Kind == source.URL {
		c.preview = res.Image
		c.previewType = res.ContentType
	}
	return nil
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		FileName:    c.fileName,
		ImageURL:    c.imageURL,
		Prediction:  c.prediction,
		Loading:     c.loading,
		Dark:        c.dark,
		Preview:     c.preview,
		PreviewType: c.previewType,
	}
}

func (c *Controller) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Controller) idleSince(now time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen), c.loading
}
