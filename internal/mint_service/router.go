package mint_service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nft-minting-service/internal/mint_service/handler"
	"github.com/nft-minting-service/internal/mint_service/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	mintHandler *handler.MintHandler,
	assetHandler *handler.AssetHandler,
	auditHandler *handler.AuditHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Wallet operations
		wallets := v1.Group("/wallets")
		{
			wallets.POST("", walletHandler.Create)
			wallets.GET("/:userId", walletHandler.GetByUserID)
			wallets.GET("/:userId/ledger", walletHandler.GetLedger)
			wallets.GET("/:userId/audit-events", auditHandler.GetByActorID)
		}

		// Mint operations
		mints := v1.Group("/mints")
		{
			mints.POST("", mintHandler.Create)
			mints.GET("/:id", mintHandler.GetByID)
		}

		// Minted asset reads
		assets := v1.Group("/assets")
		{
			assets.GET("/:tokenId", assetHandler.GetByTokenID)
			assets.GET("/:tokenId/image", assetHandler.GetImage)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
