package models

import (
	"errors"
	"testing"
)

func TestClassifyRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  ClassifyRequest
		want error
	}{
		{name: "image only", req: ClassifyRequest{Image: "aGVsbG8="}},
		{name: "url only", req: ClassifyRequest{ImageURL: "https://example.com/a.jpg"}},
		{name: "neither", req: ClassifyRequest{}, want: ErrNoImage},
		{name: "blank strings", req: ClassifyRequest{Image: "  ", ImageURL: "\t"}, want: ErrNoImage},
		{name: "both", req: ClassifyRequest{Image: "aGVsbG8=", ImageURL: "https://example.com/a.jpg"}, want: ErrBothSources},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if got := Label("soccer"); got != "SOCCER" {
		t.Errorf("Label(soccer) = %q", got)
	}
	if got := Label("ice hockey"); got != "ICE HOCKEY" {
		t.Errorf("Label(ice hockey) = %q", got)
	}
}
