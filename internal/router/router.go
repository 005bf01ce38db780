package router

import (
	"net/http"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/config"
	"github.com/blues/artdrop/internal/handler"
	"github.com/blues/artdrop/internal/metrics"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps 路由依赖, DB 为空时不注册投影查询路由
type Deps struct {
	Node     *artdrop.Node
	DB       *gorm.DB
	Metrics  *metrics.Metrics
	Config   *config.Config
	Monitors []handler.StatusProvider
}

func Setup(deps Deps) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(handler.RequestID())
	r.Use(handler.AccessLog())
	r.Use(handler.CORS())
	if deps.Metrics != nil {
		r.Use(handler.Metrics(deps.Metrics))
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "artdrop",
			"source":   deps.Node.Source(),
			"registry": deps.Node.RegistryAddress().Hex(),
			"usdc":     deps.Node.USDCAddress().Hex(),
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		campaignHandler := handler.NewCampaignHandler(deps.Node, deps.Metrics)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.POST("/:id/start", campaignHandler.StartCampaign)
			campaigns.POST("/:id/contribute", campaignHandler.Contribute)
			campaigns.POST("/:id/token-art", campaignHandler.CreateTokenArt)
			campaigns.POST("/:id/distribute", campaignHandler.DistributeTokens)
			campaigns.POST("/:id/withdraw", campaignHandler.WithdrawFunds)
			campaigns.POST("/:id/withdraw-incomplete", campaignHandler.WithdrawIncompleteCampaign)
			campaigns.GET("/:id/token-art", campaignHandler.GetTokenArt)
			campaigns.GET("/:id/remaining-time", campaignHandler.GetRemainingTime)
			campaigns.GET("/:id/contributions", campaignHandler.GetContributions)
		}

		tokenHandler := handler.NewTokenHandler(deps.Node, deps.Metrics)
		usdc := v1.Group("/usdc")
		{
			usdc.POST("/mint", tokenHandler.MintUSDC)
			usdc.POST("/approve", tokenHandler.ApproveUSDC)
			usdc.GET("/balance/:address", tokenHandler.GetUSDCBalance)
		}
		tokens := v1.Group("/tokens/:token")
		{
			tokens.GET("/balance/:address", tokenHandler.GetTokenBalance)
			tokens.POST("/transfer", tokenHandler.TransferToken)
		}

		devHandler := handler.NewDevHandler(deps.Node)
		v1.GET("/chain/logs", devHandler.GetLogs)
		if deps.Config == nil || deps.Config.Ledger.DevMode {
			v1.POST("/dev/increase-time", devHandler.IncreaseTime)
		}

		if deps.DB != nil {
			indexHandler := handler.NewIndexHandler(deps.DB, deps.Node.Source(), deps.Monitors...)
			index := v1.Group("/index")
			{
				index.GET("/campaigns", indexHandler.GetCampaigns)
				index.GET("/campaigns/:id", indexHandler.GetCampaign)
				index.GET("/campaigns/:id/contributions", indexHandler.GetCampaignContributions)
				index.GET("/campaigns/:id/stats", indexHandler.GetCampaignStats)
				index.GET("/campaigns/:id/refunds", indexHandler.GetCampaignRefunds)
				index.GET("/campaigns/:id/settlement", indexHandler.GetSettlement)
				index.GET("/campaigns/:id/token-art", indexHandler.GetTokenArt)
				index.GET("/campaigns/:id/distributions", indexHandler.GetDistributions)
				index.GET("/contributors/:address", indexHandler.GetContributorRecords)
				index.GET("/events", indexHandler.GetEvents)
				index.GET("/stats", indexHandler.GetStats)
			}
		}
	}

	return r
}
