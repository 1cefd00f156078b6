package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connect-four/internal/transport/http/middleware"
	"github.com/iamasit07/connect-four/pkg/auth"
)

const timeLayout = time.RFC3339

type RouterConfig struct {
	Tables         TableService
	History        HistoryService
	Tokens         *auth.TokenManager
	AllowedOrigins []string
	// WebSocket handles GET /ws/tables/:id, left unrouted when nil
	WebSocket gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	tableHandler := NewTableHandler(cfg.Tables, cfg.Tokens)
	historyHandler := NewHistoryHandler(cfg.History)

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/tables", tableHandler.CreateTable)
		api.GET("/tables/:id", tableHandler.GetTable)
		api.GET("/tables/:id/history", historyHandler.GetTableHistory)
		api.GET("/history/:id", historyHandler.GetRoundDetails)
	}

	// Table-token routes
	protected := api.Group("/tables/:id")
	protected.Use(middleware.TableAuth(cfg.Tokens))
	{
		protected.POST("/moves", tableHandler.MakeMove)
		protected.POST("/restart", tableHandler.Restart)
		protected.DELETE("", tableHandler.DeleteTable)
	}

	if cfg.WebSocket != nil {
		router.GET("/ws/tables/:id", cfg.WebSocket)
	}

	return router
}
