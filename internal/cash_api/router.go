package cash_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/easyplus-cash-ledger/internal/cash_api/handler"
	"github.com/easyplus-cash-ledger/internal/cash_api/middleware"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	sessionHandler *handler.SessionHandler,
	cashHandler *handler.CashHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		sessions := v1.Group("/sessions/:date/:shift")
		{
			sessions.GET("/ledger", sessionHandler.GetLedger)
			sessions.PUT("/vendor", sessionHandler.SelectVendor)
			sessions.POST("/working/bills", sessionHandler.RecordBill)
			sessions.DELETE("/working", sessionHandler.ClearWorking)
			sessions.POST("/deposits", sessionHandler.SaveDeposit)
			sessions.DELETE("/deposits/:vendor/:sequence", sessionHandler.DeleteDeposit)
			sessions.POST("/sync", sessionHandler.Sync)
			sessions.GET("/bundles", sessionHandler.Bundles)
			sessions.GET("/history", sessionHandler.History)
			sessions.GET("/history/:event_id", sessionHandler.HistoryEvent)
		}

		v1.POST("/change", cashHandler.Change)
		v1.POST("/reconciliations", cashHandler.Reconcile)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
