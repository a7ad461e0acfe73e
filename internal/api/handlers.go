package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fetrias/techtrack/internal/query"
	"github.com/fetrias/techtrack/internal/tech"
	"github.com/fetrias/techtrack/internal/transfer"
)

// Error codes carried in error responses.
const (
	codeValidation  = "E_VALIDATION"
	codePersistence = "E_PERSISTENCE"
	codeNotFound    = "E_NOT_FOUND"
)

func (s *Server) registerRoutes(g *gin.RouterGroup) {
	g.GET("/health", s.health)

	g.GET("/technologies", s.list)
	g.POST("/technologies", s.create)
	g.POST("/technologies/bulk", s.bulkUpdate)
	g.GET("/technologies/:id", s.get)
	g.PATCH("/technologies/:id", s.update)
	g.DELETE("/technologies/:id", s.delete)

	g.POST("/import", s.importPayload)
	g.GET("/export", s.export)
	g.GET("/stats", s.stats)
	g.GET("/upcoming", s.upcoming)
}

func fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"ok": false, "code": code, "error": msg})
}

// failErr maps a repository error to a response. Persistence details stay
// in the log.
func (s *Server) failErr(c *gin.Context, err error) {
	var ve *tech.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"code":  codeValidation,
			"error": ve.Error(),
			"field": ve.Field,
		})
		return
	}
	s.logger.Error("request failed", "path", c.Request.URL.Path, "trace_id", c.GetString(traceKey), "error", err)
	fail(c, http.StatusInternalServerError, codePersistence, "could not save changes")
}

func parseID(c *gin.Context) (tech.ID, bool) {
	id, err := tech.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, codeValidation, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": s.repo.Len()})
}

func (s *Server) list(c *gin.Context) {
	var status tech.Status
	if raw := c.Query("status"); raw != "" {
		st, err := tech.ParseStatus(raw)
		if err != nil {
			s.failErr(c, err)
			return
		}
		status = st
	}
	items := query.Apply(s.repo.List(), status, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"ok": true, "technologies": items})
}

func (s *Server) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, found := s.repo.Get(id)
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "technology not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "technology": rec})
}

func (s *Server) create(c *gin.Context) {
	var d tech.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		fail(c, http.StatusBadRequest, codeValidation, "invalid body")
		return
	}
	rec, err := s.repo.Add(c.Request.Context(), d)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "technology": rec})
}

func (s *Server) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var p tech.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, codeValidation, "invalid body")
		return
	}
	found, err := s.repo.Update(c.Request.Context(), id, p)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "technology not found")
		return
	}
	rec, _ := s.repo.Get(id)
	c.JSON(http.StatusOK, gin.H{"ok": true, "technology": rec})
}

type bulkReq struct {
	IDs     []tech.ID  `json:"ids"`
	Updates tech.Patch `json:"updates"`
}

func (s *Server) bulkUpdate(c *gin.Context) {
	var req bulkReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		fail(c, http.StatusBadRequest, codeValidation, "invalid body")
		return
	}
	n, err := s.repo.BulkUpdate(c.Request.Context(), req.IDs, req.Updates)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": n})
}

func (s *Server) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	found, err := s.repo.Delete(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "technology not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) importPayload(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody))
	if err != nil {
		fail(c, http.StatusRequestEntityTooLarge, codeValidation, "import file too large")
		return
	}
	report, err := transfer.Import(c.Request.Context(), s.repo, payload)
	if err != nil {
		if report != nil {
			// Part of the batch was committed before the failure.
			c.Header("X-Imported", strconv.Itoa(len(report.Added)))
		}
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "report": report})
}

func (s *Server) export(c *gin.Context) {
	data, err := transfer.ExportSnapshot(s.repo)
	if err != nil {
		s.failErr(c, err)
		return
	}
	name := transfer.ExportFilename(s.clock.Now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": query.Summarize(s.repo.List())})
}

func (s *Server) upcoming(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, codeValidation, "days must be a non-negative integer")
			return
		}
		days = n
	}
	items := query.Upcoming(s.repo.List(), s.clock.Now(), time.Duration(days)*24*time.Hour)
	c.JSON(http.StatusOK, gin.H{"ok": true, "technologies": items})
}
