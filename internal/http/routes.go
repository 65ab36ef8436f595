package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())

	r.POST("/api/relay", h.Relay)
	r.OPTIONS("/api/relay", h.RelayPreflight)

	r.GET("/auth/google/callback", h.GoogleCallback)

	r.GET("/healthz", h.Healthz)
	r.GET("/status", h.Status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
