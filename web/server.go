// ABOUTME: JSON HTTP API over the lead service
// ABOUTME: Public quote intake plus admin lead, sync and import endpoints with metrics
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/monitoring"
	"github.com/harperreed/quotedesk/normalize"
	"github.com/harperreed/quotedesk/remote"
)

type Server struct {
	svc    *crm.Service
	logger *log.Logger
	router *gin.Engine
}

func NewServer(svc *crm.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	monitoring.Init()

	s := &Server{svc: svc, logger: logger}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), PrometheusMetrics(), ErrorHandler())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(monitoring.Handler()))

	api := router.Group("/api")
	{
		api.POST("/quotes", s.submitQuote)
		api.GET("/leads", s.listLeads)
		api.POST("/leads", s.addLead)
		api.GET("/leads/:id", s.getLead)
		api.PATCH("/leads/:id/status", s.setStatus)
		api.POST("/leads/:id/contacted", s.toggleContacted)
		api.POST("/sync/pull", s.pull)
		api.POST("/import/pending", s.importPending)
		api.GET("/stats", s.stats)
	}
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"remote": s.svc.HasRemote(),
	})
}

func (s *Server) submitQuote(c *gin.Context) {
	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.svc.SubmitQuote(c.Request.Context(), sub)
	if err != nil {
		s.fail(c, err)
		return
	}

	body := gin.H{"id": res.Record.ID, "queued": true}
	switch {
	case res.PushError != nil:
		body["remote"] = gin.H{"error": res.PushError.Error(), "category": remote.Classify(res.PushError)}
	case res.Push.Duplicate:
		body["remote"] = gin.H{"duplicate": true}
	case res.Push.Success:
		body["remote"] = gin.H{"success": true}
	}
	c.JSON(http.StatusCreated, body)
}

func (s *Server) listLeads(c *gin.Context) {
	filter := crm.Filter{Query: c.Query("query")}
	if status := c.Query("status"); status != "" {
		filter.Status = normalize.Status(status)
	}

	leads := s.svc.Filtered(c.Request.Context(), filter)
	if leads == nil {
		leads = []models.CustomerRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads, "count": len(leads)})
}

func (s *Server) getLead(c *gin.Context) {
	rec, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) addLead(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.svc.AddForm(c.Request.Context(), fields)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) setStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) toggleContacted(c *gin.Context) {
	rec, err := s.svc.ToggleContacted(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) pull(c *gin.Context) {
	res, err := s.svc.PullRemote(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mergeBody(res.Added, res.Updated, res.Skipped, res.Rejected))
}

func (s *Server) importPending(c *gin.Context) {
	res, err := s.svc.ImportPending(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mergeBody(res.Added, res.Updated, res.Skipped, res.Rejected))
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func mergeBody(added, updated, skipped, rejected int) gin.H {
	return gin.H{
		"added":    added,
		"updated":  updated,
		"skipped":  skipped,
		"rejected": rejected,
	}
}

// fail maps service errors to status codes. Unexpected errors are attached
// to the context so ErrorHandler reports them.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}

	body := gin.H{"error": err.Error()}
	if category := remote.Classify(err); category != remote.CategoryUnknown && category != remote.CategoryNone {
		body["category"] = category
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, convert.ErrMalformedRecord):
		return http.StatusBadRequest
	case errors.Is(err, crm.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, crm.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, crm.ErrNoRemote):
		return http.StatusServiceUnavailable
	}
	switch remote.Classify(err) {
	case remote.CategoryTimeout:
		return http.StatusGatewayTimeout
	case remote.CategoryNetwork, remote.CategoryMalformed, remote.CategoryRemote:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
