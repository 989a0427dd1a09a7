package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kdduha/sportsclass/internal/models"
	"github.com/kdduha/sportsclass/internal/source"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}

type stubPredictor struct {
	class   string
	err     error
	calls   atomic.Int32
	gotB64  atomic.Value
	release chan struct{}
}

func (p *stubPredictor) Name() string { return "stub" }

func (p *stubPredictor) Predict(ctx context.Context, imageB64 string) (string, error) {
	p.calls.Add(1)
	p.gotB64.Store(imageB64)
	if p.release != nil {
		<-p.release
	}
	return p.class, p.err
}

type mapCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMapCache() *mapCache { return &mapCache{values: map[string]string{}} }

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *mapCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

func newTestService(p *stubPredictor) *ClassifyService {
	return NewClassifyService(log.New(io.Discard, "", 0), source.NewFetcher(nil, 0), p)
}

func TestClassifyFile(t *testing.T) {
	p := &stubPredictor{class: "soccer"}
	s := newTestService(p)

	res, err := s.Classify(context.Background(), source.FromFile("match.png", pngBytes))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Class != "soccer" {
		t.Errorf("expected soccer, got %q", res.Class)
	}
	if res.ContentType != "image/png" {
		t.Errorf("expected image/png, got %q", res.ContentType)
	}
	if got := p.gotB64.Load(); got != source.Encode(pngBytes) {
		t.Errorf("predictor received %v", got)
	}
}

func TestClassifyEmptySourceSkipsPredictor(t *testing.T) {
	p := &stubPredictor{class: "soccer"}
	s := newTestService(p)

	_, err := s.Classify(context.Background(), source.Source{})
	if !errors.Is(err, models.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if p.calls.Load() != 0 {
		t.Errorf("expected no predictor calls, got %d", p.calls.Load())
	}
}

func TestClassifyPredictorError(t *testing.T) {
	boom := errors.New("boom")
	s := newTestService(&stubPredictor{err: boom})

	if _, err := s.Classify(context.Background(), source.FromFile("a.png", pngBytes)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped predictor error, got %v", err)
	}
}

func TestClassifyUsesCache(t *testing.T) {
	p := &stubPredictor{class: "tennis"}
	s := newTestService(p)
	c := newMapCache()
	s.SetCacheClient(c)

	src := source.FromFile("a.png", pngBytes)
	first, err := s.Classify(context.Background(), src)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	second, err := s.Classify(context.Background(), src)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if p.calls.Load() != 1 {
		t.Errorf("expected one predictor call, got %d", p.calls.Load())
	}
	if first.Cached || !second.Cached {
		t.Errorf("expected only the second result to be cached: %v %v", first.Cached, second.Cached)
	}
	if second.Class != "tennis" {
		t.Errorf("expected tennis from cache, got %q", second.Class)
	}
}

func TestClassifyCacheErrorIsNotFatal(t *testing.T) {
	p := &stubPredictor{class: "rugby"}
	s := newTestService(p)
	c := newMapCache()
	c.getErr = errors.New("redis down")
	s.SetCacheClient(c)

	res, err := s.Classify(context.Background(), source.FromFile("a.png", pngBytes))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Class != "rugby" {
		t.Errorf("expected rugby, got %q", res.Class)
	}
}

func TestPredictEncodedWaiterCancel(t *testing.T) {
	p := &stubPredictor{class: "golf", release: make(chan struct{})}
	s := newTestService(p)
	c := newMapCache()
	s.SetCacheClient(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := s.PredictEncoded(ctx, "Z29sZg==")
		done <- err
	}()

	for p.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// the shared call still finishes and fills the cache
	close(p.release)
	deadline := time.Now().Add(2 * time.Second)
	for c.len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.len() != 1 {
		t.Fatal("expected shared call to populate the cache")
	}
}
