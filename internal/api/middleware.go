package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceHeader = "X-Trace-Id"
	traceKey    = "trace_id"
)

type uuidV7 struct{}

func (uuidV7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// trace tags each request with a trace id, reusing the caller's if sent.
func (s *Server) trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(traceHeader)
		if id == "" {
			id = s.traceIDs.Generate()
		}
		c.Set(traceKey, id)
		c.Header(traceHeader, id)
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"trace_id", c.GetString(traceKey),
		)
	}
}
