package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/collectors"
	"github.com/spigell/job-finder/internal/jobs"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

type SearchResponse struct {
	RelevantJobs []jobs.Posting `json:"relevant_jobs"`
}

type PlatformsResponse struct {
	Platforms []string `json:"platforms"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) search(c *gin.Context) {
	var criteria jobs.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	criteria.Position = strings.TrimSpace(criteria.Position)
	if criteria.Position == "" {
		abort(c, http.StatusBadRequest, "Position is required", nil)
		return
	}

	ctx := c.Request.Context()
	postings, err := s.searcher.Search(ctx, criteria)
	if err != nil {
		if errors.Is(err, collectors.ErrUnknownPlatform) {
			abort(c, http.StatusBadRequest, "Unknown platform", err)
			return
		}
		s.logger.Error("search failed", zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
		abort(c, http.StatusInternalServerError, "An error occurred while searching for jobs", err)
		return
	}

	relevant := s.ranker.Filter(ctx, postings, criteria, s.cfg.MinScore)
	if relevant == nil {
		relevant = []jobs.Posting{}
	}

	s.logger.Info("search served",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("position", criteria.Position),
		zap.Int("collected", len(postings)),
		zap.Int("relevant", len(relevant)),
	)

	c.JSON(http.StatusOK, SearchResponse{RelevantJobs: relevant})
}

func (s *Server) platforms(c *gin.Context) {
	c.JSON(http.StatusOK, PlatformsResponse{Platforms: s.searcher.Platforms()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   s.cfg.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func abort(c *gin.Context, code int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(code, resp)
}
