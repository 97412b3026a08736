package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/bomkit/pkg/application/app"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine serving the JSON API for a.
func NewRouter(a *app.App, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(a.Logger()))

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "bomkit"})
	})

	h := &handler{app: a}
	api := router.Group("/api")
	{
		api.GET("/dashboard", h.dashboard)
		api.GET("/activity", h.activity)
		api.POST("/sync", h.sync)
		api.GET("/export/:kind", h.export)
		api.POST("/import/:kind", h.importCSV)

		parts := api.Group("/parts")
		parts.GET("", h.listParts)
		parts.POST("", h.savePart)
		parts.PUT("/:id", h.savePart)
		parts.DELETE("/:id", h.deletePart)

		inventory := api.Group("/inventory")
		inventory.GET("", h.listInventory)
		inventory.POST("/reconcile", h.reconcile)
		inventory.PUT("/:partId", h.saveInventory)
		inventory.POST("/:partId/consume", h.consume)
		inventory.POST("/:partId/replenish", h.replenish)

		boms := api.Group("/boms")
		boms.GET("", h.listBOMs)
		boms.POST("", h.saveBOM)
		boms.PUT("/:id", h.saveBOM)
		boms.DELETE("/:id", h.deleteBOM)
		boms.GET("/:id/cost", h.bomCost)

		quotes := api.Group("/quotes")
		quotes.GET("", h.listQuotes)
		quotes.GET("/estimate", h.estimate)
		quotes.POST("", h.saveQuote)
		quotes.PUT("/:id", h.saveQuote)
		quotes.PATCH("/:id/status", h.quoteStatus)
		quotes.DELETE("/:id", h.deleteQuote)
		quotes.GET("/:id/shortages", h.shortages)
		quotes.GET("/:id/schedule", h.schedule)
		quotes.GET("/:id/gantt.svg", h.gantt)
		quotes.GET("/:id/production-order", h.productionOrder)

		orders := api.Group("/orders")
		orders.GET("", h.listOrders)
		orders.GET("/plan", h.plan)
		orders.POST("/confirm", h.confirm)
		orders.PATCH("/:id/status", h.orderStatus)
		orders.DELETE("/:id", h.deleteOrder)
	}
	return router
}

// Serve runs the API on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
