// Package source describes where an image comes from and how its raw bytes
// are acquired before encoding.
package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Kind int

const (
	None Kind = iota
	File
	URL
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case URL:
		return "url"
	default:
		return "none"
	}
}

var (
	ErrEmpty       = errors.New("image source is empty")
	ErrTooLarge    = errors.New("image exceeds size limit")
	ErrUnsupported = errors.New("unsupported url scheme")
)

// Source is exactly one of a local file or a remote URL.
type Source struct {
	Kind     Kind
	FileName string
	Data     []byte
	URL      string
}

func FromFile(name string, data []byte) Source {
	return Source{Kind: File, FileName: name, Data: data}
}

func FromURL(rawURL string) Source {
	return Source{Kind: URL, URL: strings.TrimSpace(rawURL)}
}

func (s Source) Empty() bool {
	switch s.Kind {
	case File:
		return len(s.Data) == 0
	case URL:
		return s.URL == ""
	default:
		return true
	}
}

// Fetcher downloads images for URL sources.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Acquire returns the raw image bytes for src.
func (f *Fetcher) Acquire(ctx context.Context, src Source) ([]byte, error) {
	if src.Empty() {
		return nil, ErrEmpty
	}
	switch src.Kind {
	case File:
		if f.maxBytes > 0 && int64(len(src.Data)) > f.maxBytes {
			return nil, fmt.Errorf("%s: %w", src.FileName, ErrTooLarge)
		}
		return src.Data, nil
	case URL:
		return f.Fetch(ctx, src.URL)
	}
	return nil, ErrEmpty
}

// Fetch GETs rawURL and reads the whole body as binary.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%q: %w", u.Scheme, ErrUnsupported)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch image: bad status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ContentType sniffs the MIME type, falling back to jpeg for unknown bytes.
func ContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "image/jpeg"
	}
	return ct
}
