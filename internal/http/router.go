package api

import (
	"log"
	stdhttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	intconfig "backend/internal/config"
	h "backend/internal/http/handlers"
	"backend/internal/http/middleware"
	"backend/internal/metrics"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), corsMiddleware(env))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/send-otp", h.SendOTP)
		auth.POST("/verify-otp", h.VerifyOTP)

		api.GET("/coaches/:class/layout", h.GetCoachLayout)
		api.GET("/stations", h.GetStations)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(env.JWTSecret))
		{
			authed.GET("/me", h.Me)

			tickets := authed.Group("/tickets")
			tickets.POST("", h.CreateTicket)
			tickets.GET("", h.ListTickets)
			tickets.GET("/:ticket_id", h.GetTicket)
			tickets.DELETE("/:ticket_id", h.DeleteTicket)
			tickets.GET("/:ticket_id/eticket", h.GetTicketETicketPDF)

			exchange := authed.Group("/exchange")
			exchange.POST("/find-matches/:ticket_id", h.FindMatches)
			exchange.POST("/batch-find-matches", h.BatchFindMatches)
			exchange.POST("/requests", h.SendExchangeRequest)
			exchange.GET("/requests", h.ListExchangeRequests)
			exchange.POST("/requests/:request_id/answer", h.AnswerExchangeRequest)
			exchange.POST("/requests/:request_id/confirm", h.ConfirmExchange)
			exchange.POST("/requests/:request_id/rate", h.RateExchange)
		}
	}

	return r
}

func corsMiddleware(env intconfig.Env) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(env.CORSOrigins) > 0 {
		cfg.AllowOrigins = env.CORSOrigins
	} else {
		cfg.AllowOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	}
	return cors.New(cfg)
}
