package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aqdash/internal/model"
	"aqdash/internal/util/logx"
)

type errResponse struct {
	Error string `json:"error"`
}

// newRouter serves the dashboard backend API under /api. Every API call is
// recorded and shows up in the analytics endpoints.
func newRouter(s *store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), recordRequests(s))

	api := r.Group("/api")
	api.GET("/global", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.global())
	})
	api.GET("/cities", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.snapshot())
	})
	api.GET("/analytics/summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.summary())
	})
	api.GET("/analytics/timeline", func(c *gin.Context) {
		limit := 100
		if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
			limit = v
		}
		c.JSON(http.StatusOK, s.timeline(limit))
	})
	api.GET("/ai/recommendations/:city", func(c *gin.Context) {
		city, ok := s.lookup(c.Param("city"))
		if !ok {
			c.JSON(http.StatusNotFound, errResponse{Error: "City not found"})
			return
		}
		rec, err := s.recommend(c.Request.Context(), city)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, rec)
	})
	api.POST("/refresh", func(c *gin.Context) {
		s.reload(time.Now())
		c.JSON(http.StatusAccepted, gin.H{"status": "refreshed", "cities": len(s.snapshot())})
	})
	return r
}

func recordRequests(s *store) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/") {
			return
		}
		ms := float64(time.Since(start).Microseconds()) / 1000
		s.record(model.RequestLog{
			Timestamp:    start.UTC().Format(time.RFC3339Nano),
			Endpoint:     path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: model.Float(ms),
		})
		logx.Debugf("mockapi: %s %s -> %d", c.Request.Method, path, c.Writer.Status())
	}
}
