package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdrpinto/gridsearch"
	"github.com/pdrpinto/gridsearch/internal/ctxlog"
)

type paintRequest struct {
	X    int              `json:"x"`
	Y    int              `json:"y"`
	Role *gridsearch.Role `json:"role" binding:"required"`
}

type positionRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type toolRequest struct {
	Role *gridsearch.Role `json:"role" binding:"required"`
}

type scatterRequest struct {
	Clusters *int     `json:"clusters" binding:"omitempty,min=0"`
	Steps    *int     `json:"steps" binding:"omitempty,min=0"`
	Density  *float64 `json:"density" binding:"omitempty,min=0,max=1"`
	Seed     uint64   `json:"seed"`
}

type speedRequest struct {
	Milliseconds *int `json:"ms" binding:"required,min=0"`
}

type turboRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// statusFor maps controller errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gridsearch.ErrOutOfBounds),
		errors.Is(err, gridsearch.ErrUnknownRole),
		errors.Is(err, gridsearch.ErrInvalidLayout):
		return http.StatusBadRequest
	case errors.Is(err, gridsearch.ErrMissingEndpoints):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gridsearch.ErrInvalidTransition),
		errors.Is(err, gridsearch.ErrSearchActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, err error) {
	logger := ctxlog.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed.", "path", c.Request.URL.Path, "error", err)
	} else {
		logger.Debug("Request rejected.", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) respondState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": s.session.Controller().State()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleGrid(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Controller().Snapshot())
}

func (s *Server) handlePaint(c *gin.Context) {
	var req paintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	changed, err := s.session.Controller().Paint(gridsearch.Position{X: req.X, Y: req.Y}, *req.Role)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (s *Server) handleGetTool(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"role": s.session.Tool()})
}

func (s *Server) handleSetTool(c *gin.Context) {
	var req toolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.session.SetTool(*req.Role); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": *req.Role})
}

func (s *Server) handlePaintAt(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	changed, err := s.session.PaintAt(gridsearch.Position{X: req.X, Y: req.Y})
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (s *Server) handleScatter(c *gin.Context) {
	var req scatterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	scatter := gridsearch.DefaultScatter
	if req.Clusters != nil {
		scatter.Clusters = *req.Clusters
	}
	if req.Steps != nil {
		scatter.Steps = *req.Steps
	}
	if req.Density != nil {
		scatter.Density = *req.Density
	}
	if err := s.session.ScatterWalls(scatter, req.Seed); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, s.session.Controller().Snapshot())
}

func (s *Server) handleSpeed(c *gin.Context) {
	var req speedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	delay := time.Duration(*req.Milliseconds) * time.Millisecond
	s.session.Controller().SetSpeed(delay)
	c.JSON(http.StatusOK, gin.H{"ms": delay.Milliseconds()})
}

func (s *Server) handleTurbo(c *gin.Context) {
	var req turboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.session.Controller().SetTurbo(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

func (s *Server) handleStart(c *gin.Context) {
	if err := s.session.StartSearch(); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	s.respondState(c)
}

func (s *Server) handlePause(c *gin.Context) {
	if err := s.session.Controller().Pause(); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	s.respondState(c)
}

func (s *Server) handleResume(c *gin.Context) {
	if err := s.session.Controller().Resume(); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	s.respondState(c)
}

func (s *Server) handleReset(c *gin.Context) {
	s.session.Controller().Reset()
	s.respondState(c)
}
