package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kdduha/sportsclass/internal/cache"
	"github.com/kdduha/sportsclass/internal/config"
	"github.com/kdduha/sportsclass/internal/predictor"
	"github.com/kdduha/sportsclass/internal/service"
	"github.com/kdduha/sportsclass/internal/source"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var (
	cfg    *config.Config
	logger = log.Default()

	// endpoint overrides PREDICT_ENDPOINT when set
	endpoint string
)

var rootCmd = &cobra.Command{
	Use:     "sportsclass",
	Short:   "Sports image classification form and client",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if endpoint != "" {
			cfg.Predictor.Endpoint = endpoint
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "prediction endpoint (default $PREDICT_ENDPOINT or http://localhost:5000/predict)")
	rootCmd.AddCommand(serveCmd, classifyCmd, benchCmd)
}

// newClassifyService builds the classify pipeline from cfg. The returned
// closer releases the cache connection, if any.
func newClassifyService(ctx context.Context) (*service.ClassifyService, func(), error) {
	p, err := predictor.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	fetcher := source.NewFetcher(&http.Client{Timeout: cfg.Predictor.Timeout}, cfg.Predictor.MaxImageBytes)
	svc := service.NewClassifyService(logger, fetcher, p)
	closer := func() {}

	if cfg.CacheEnable {
		redisCache := cache.NewRedisCache(
			cfg.RedisConfig.Addr,
			cfg.RedisConfig.Password,
			cfg.RedisConfig.DB,
			cfg.RedisConfig.TTL,
		)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Printf("redis ping failed, cache may be unavailable: %v\n", err)
		}
		svc.SetCacheClient(redisCache)
		closer = func() { _ = redisCache.Close() }
		logger.Println("set redis as cache")
	}

	logger.Printf("predictor: %s\n", p.Name())
	return svc, closer, nil
}
