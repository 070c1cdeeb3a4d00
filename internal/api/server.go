package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/typelib/internal/logger"
	"github.com/samcharles93/typelib/internal/report"
	"github.com/samcharles93/typelib/internal/version"
)

// DefaultMaxBody caps upload size when Options leaves it unset.
const DefaultMaxBody = 16 << 20

type Options struct {
	MaxBodyBytes int64
	RateLimit    float64
	RateBurst    int
}

type Server struct {
	store   *ReportStore
	log     logger.Logger
	maxBody int64
	limit   echo.MiddlewareFunc
}

func NewServer(store *ReportStore, log logger.Logger, opts Options) *Server {
	if store == nil {
		store = NewReportStore(256)
	}
	if log == nil {
		log = logger.Discard()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBody
	}
	return &Server{
		store:   store,
		log:     log,
		maxBody: opts.MaxBodyBytes,
		limit:   RateLimit(opts.RateLimit, opts.RateBurst),
	}
}

func (s *Server) Register(e *echo.Echo) {
	v1 := e.Group("/v1", s.limit)
	v1.POST("/validate", s.handleValidate)
	v1.GET("/reports/:id", s.handleGetReport)

	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleValidate(c *echo.Context) error {
	source := c.QueryParam("source")
	if err := checkSource(source); err != nil {
		return writeBadRequest(c, err)
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, "too_large_error", "request body exceeds the upload limit")
		}
		return writeBadRequest(c, newInvalidRequest("body", err.Error()))
	}

	r, cached := s.store.Lookup(report.Digest(data))
	if !cached {
		r = report.Build(source, data)
		if err := s.store.Save(r); err != nil {
			s.log.Warn("cache report", "id", r.ID, "error", err)
		}
	}

	s.log.Info("validated",
		"id", r.ID,
		"source", source,
		"size", len(data),
		"verdict", r.Verdict,
		"cached", cached,
	)
	if r.Failure != nil {
		s.log.Debug("rejected", "id", r.ID, "kind", r.Failure.Kind, "offset", r.Failure.Offset, "reason", r.Failure.Message)
	}

	if cached {
		c.Response().Header().Set("X-Cache", "hit")
	}
	status := http.StatusOK
	if !r.Valid() {
		status = http.StatusUnprocessableEntity
	}
	return writeJSON(c, status, r)
}

func (s *Server) handleGetReport(c *echo.Context) error {
	id := c.Param("id")
	r, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "report not found: "+id)
	}
	return writeJSON(c, http.StatusOK, r)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}
