package models

import (
	"errors"
	"strings"
)

var (
	ErrNoImage     = errors.New("please select an image or enter a URL")
	ErrBothSources = errors.New("image and image_url are mutually exclusive")
)

// PredictRequest is the body sent to the prediction endpoint.
type PredictRequest struct {
	Image string `json:"image"`
}

// PredictResponse is the body returned by the prediction endpoint.
type PredictResponse struct {
	Class string `json:"class"`
}

// ClassifyRequest represents request for classify endpoint.
// Exactly one of Image and ImageURL must be set.
type ClassifyRequest struct {
	Image    string `json:"image" example:"iVBORw0KGgoAAAANSUhEUgAA..."`
	ImageURL string `json:"image_url" example:"https://example.com/match.jpg"`
}

func (r ClassifyRequest) Validate() error {
	hasImage := strings.TrimSpace(r.Image) != ""
	hasURL := strings.TrimSpace(r.ImageURL) != ""
	switch {
	case hasImage && hasURL:
		return ErrBothSources
	case !hasImage && !hasURL:
		return ErrNoImage
	}
	return nil
}

type ClassifyResponse struct {
	Class  string `json:"class" example:"soccer"`
	Label  string `json:"label" example:"SOCCER"`
	Cached bool   `json:"cached" example:"false"`
}

// Classification is the outcome of one classify pipeline run.
type Classification struct {
	Class       string
	Image       []byte
	ContentType string
	Cached      bool
}

// Label is the class as shown to the user.
func Label(class string) string {
	return strings.ToUpper(class)
}

// SessionState is the JSON view of a form session.
type SessionState struct {
	FileName   string `json:"file_name,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Prediction string `json:"prediction,omitempty"`
	Label      string `json:"label,omitempty"`
	Loading    bool   `json:"loading"`
	Dark       bool   `json:"dark"`
	CanSubmit  bool   `json:"can_submit"`
}
