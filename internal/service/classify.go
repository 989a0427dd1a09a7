package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/kdduha/sportsclass/internal/metrics"
	"github.com/kdduha/sportsclass/internal/models"
	"github.com/kdduha/sportsclass/internal/source"
	"golang.org/x/sync/singleflight"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

type Predictor interface {
	Name() string
	Predict(ctx context.Context, imageB64 string) (string, error)
}

type Acquirer interface {
	Acquire(ctx context.Context, src source.Source) ([]byte, error)
}

// ClassifyService runs acquire -> encode -> predict for one image source.
type ClassifyService struct {
	logger    *log.Logger
	acquirer  Acquirer
	predictor Predictor
	cache     Cache
	group     singleflight.Group
}

func NewClassifyService(logger *log.Logger, acquirer Acquirer, predictor Predictor) *ClassifyService {
	return &ClassifyService{
		logger:    logger,
		acquirer:  acquirer,
		predictor: predictor,
	}
}

func (s *ClassifyService) SetCacheClient(cache Cache) {
	s.cache = cache
}

func (s *ClassifyService) Classify(ctx context.Context, src source.Source) (*models.Classification, error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.PredictionsTotal(status, src.Kind.String())
		metrics.PredictionDuration(status, src.Kind.String(), time.Since(start))
	}()

	if src.Empty() {
		return nil, models.ErrNoImage
	}

	data, err := s.acquirer.Acquire(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire image: %w", err)
	}

	class, cached, err := s.PredictEncoded(ctx, source.Encode(data))
	if err != nil {
		return nil, err
	}

	status = "ok"
	return &models.Classification{
		Class:       class,
		Image:       data,
		ContentType: source.ContentType(data),
		Cached:      cached,
	}, nil
}

// PredictEncoded classifies an already base64-encoded image.
// Identical payloads in flight at the same time share one outbound call.
func (s *ClassifyService) PredictEncoded(ctx context.Context, imageB64 string) (string, bool, error) {
	key := getCacheKey(imageB64)

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Printf("cache get error: %v\n", err)
		}
		metrics.CacheLookup(found)
		if found {
			s.logger.Println("served from cache")
			return cached, true, nil
		}
	}

	// the shared call outlives any single waiter; a waiter whose ctx ends
	// stops waiting without cutting the call short for the others
	ch := s.group.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		class, err := s.predictor.Predict(callCtx, imageB64)
		if err != nil {
			return "", fmt.Errorf("%s predictor error: %w", s.predictor.Name(), err)
		}

		if s.cache != nil {
			if err := s.cache.Set(callCtx, key, class); err != nil {
				s.logger.Printf("failed to set cache: %v\n", err)
			}
		}
		return class, nil
	})

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		return res.Val.(string), false, nil
	}
}

func getCacheKey(imageB64 string) string {
	hash := sha256.Sum256([]byte(imageB64))
	return hex.EncodeToString(hash[:])
}
