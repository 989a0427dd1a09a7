package cli

import (
	"context"
	"net/http"

	"github.com/kdduha/sportsclass/internal/form"
	"github.com/kdduha/sportsclass/internal/handler"
	"github.com/kdduha/sportsclass/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classification form",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	svc, closeCache, err := newClassifyService(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	tmpl, err := web.Templates()
	if err != nil {
		return err
	}

	store := form.NewStore(cfg.Form.SessionTTL, func() *form.Controller {
		return form.NewController(logger, svc)
	})
	if cfg.Form.SessionTTL > 0 {
		go store.Run(ctx, cfg.Form.SessionTTL/2)
	}

	page := handler.NewPageHandler(ctx, logger, store, tmpl, handler.PageOptions{
		CookieName:    cfg.Form.CookieName,
		RefreshEvery:  cfg.Form.RefreshEvery,
		MaxImageBytes: cfg.Predictor.MaxImageBytes,
	})
	api := handler.NewAPIHandler(svc, store, cfg.Form.CookieName)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler.NewRouter(cfg.Server, page, api),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("server started :%s\n", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	page.Wait()
	logger.Println("server stopped")
	return nil
}
