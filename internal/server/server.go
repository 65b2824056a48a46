// Package server exposes the tracker's HTTP API: the ingestion trigger, alert
// and alert-config management, mention CRUD, and analytics queries. All
// domain behavior lives in the packages behind it; handlers only bind
// requests and map results.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/alerting"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/detector"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/pipeline"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/storage"
)

// Server holds handler dependencies and the configured router.
type Server struct {
	engine    *gin.Engine
	pipeline  *pipeline.Pipeline
	alerts    *alerting.Manager
	detector  *detector.Detector
	store     *storage.Store
	detection config.DetectionConfig
}

// New creates a Server with all routes registered.
func New(
	pipe *pipeline.Pipeline,
	alerts *alerting.Manager,
	det *detector.Detector,
	store *storage.Store,
	detection config.DetectionConfig,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:    gin.Default(),
		pipeline:  pipe,
		alerts:    alerts,
		detector:  det,
		store:     store,
		detection: detection,
	}
	s.registerRoutes()
	return s
}

// Router returns the underlying router, used by tests and by Run.
func (s *Server) Router() http.Handler {
	return s.engine
}

// Run starts the HTTP server on addr and blocks.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.POST("/ingest/run", s.runIngestion)
		api.POST("/detect", s.detectNow)

		api.GET("/alerts", s.listAlerts)
		api.GET("/alerts/:id", s.getAlert)
		api.PUT("/alerts/:id/resolve", s.resolveAlert)
		api.DELETE("/alerts/:id", s.deleteAlert)

		api.GET("/alert-configs", s.listAlertConfigs)
		api.POST("/alert-configs", s.createAlertConfig)
		api.GET("/alert-configs/:id", s.getAlertConfig)
		api.PUT("/alert-configs/:id", s.updateAlertConfig)
		api.DELETE("/alert-configs/:id", s.deleteAlertConfig)

		api.GET("/mentions", s.listMentions)
		api.PUT("/mentions/:id", s.updateMention)
		api.DELETE("/mentions/:id", s.deleteMention)

		api.GET("/analytics/sentiment", s.sentimentDistribution)
		api.GET("/analytics/topics", s.topicDistribution)
		api.GET("/analytics/timeline", s.mentionTimeline)
	}
}

// ─── Ingestion and detection ─────────────────────────────────────────────────

type ingestRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) runIngestion(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type detectRequest struct {
	WindowHours int     `json:"window_hours"`
	Sigma       float64 `json:"sigma"`
	Bucket      string  `json:"bucket"`
}

func (s *Server) detectNow(c *gin.Context) {
	req := detectRequest{
		WindowHours: s.detection.WindowHours,
		Sigma:       s.detection.SpikeSigma,
		Bucket:      s.detection.Bucket,
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.WindowHours == 0 {
			req.WindowHours = s.detection.WindowHours
		}
		if req.Sigma == 0 {
			req.Sigma = s.detection.SpikeSigma
		}
		if req.Bucket == "" {
			req.Bucket = s.detection.Bucket
		}
	}

	spikes, err := s.detector.DetectSpikes(req.WindowHours, req.Sigma, req.Bucket)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if spikes == nil {
		spikes = []models.SpikeFinding{}
	}
	c.JSON(http.StatusOK, gin.H{"spikes": spikes})
}

// ─── Alerts ──────────────────────────────────────────────────────────────────

func (s *Server) listAlerts(c *gin.Context) {
	filter := storage.AlertFilter{
		AlertType: c.Query("alert_type"),
		Limit:     intQuery(c, "limit", 50),
	}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "is_active must be a boolean"})
			return
		}
		filter.Active = &active
	}

	alerts, err := s.alerts.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) getAlert(c *gin.Context) {
	alert, err := s.store.GetAlert(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (s *Server) resolveAlert(c *gin.Context) {
	alert, err := s.alerts.Resolve(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (s *Server) deleteAlert(c *gin.Context) {
	if err := s.store.DeleteAlert(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert deleted"})
}

// ─── Alert configs ───────────────────────────────────────────────────────────

type alertConfigRequest struct {
	Name        string  `json:"name" binding:"required"`
	AlertType   string  `json:"alert_type" binding:"required"`
	Threshold   float64 `json:"threshold" binding:"required"`
	WindowHours int     `json:"window_hours" binding:"required"`
	Enabled     *bool   `json:"is_enabled"`
}

func (s *Server) listAlertConfigs(c *gin.Context) {
	cfgs, err := s.store.ListAlertConfigs(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alert configs"})
		return
	}
	c.JSON(http.StatusOK, cfgs)
}

func (s *Server) createAlertConfig(c *gin.Context) {
	var req alertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	cfg := models.AlertConfig{
		ID:          uuid.New().String(),
		Name:        req.Name,
		AlertType:   req.AlertType,
		Threshold:   req.Threshold,
		WindowHours: req.WindowHours,
		Enabled:     enabled,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateAlertConfig(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (s *Server) getAlertConfig(c *gin.Context) {
	cfg, err := s.store.GetAlertConfig(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert config not found"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) updateAlertConfig(c *gin.Context) {
	existing, err := s.store.GetAlertConfig(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert config not found"})
		return
	}

	var req alertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	existing.Name = req.Name
	existing.AlertType = req.AlertType
	existing.Threshold = req.Threshold
	existing.WindowHours = req.WindowHours
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if err := s.store.UpdateAlertConfig(existing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (s *Server) deleteAlertConfig(c *gin.Context) {
	if err := s.store.DeleteAlertConfig(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert config not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert config deleted"})
}

// ─── Mentions ────────────────────────────────────────────────────────────────

func (s *Server) listMentions(c *gin.Context) {
	filter := storage.MentionFilter{
		Source:    c.Query("source"),
		Sentiment: c.Query("sentiment"),
		Topic:     c.Query("topic"),
		Limit:     intQuery(c, "limit", 50),
		Offset:    intQuery(c, "offset", 0),
	}

	mentions, err := s.store.ListMentions(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list mentions"})
		return
	}
	c.JSON(http.StatusOK, mentions)
}

type mentionUpdateRequest struct {
	Sentiment      string  `json:"sentiment" binding:"required"`
	SentimentScore float64 `json:"sentiment_score"`
	Topic          string  `json:"topic" binding:"required"`
}

func (s *Server) updateMention(c *gin.Context) {
	var req mentionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mention, err := s.store.UpdateMentionLabels(c.Param("id"), req.Sentiment, req.SentimentScore, req.Topic)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mention)
}

func (s *Server) deleteMention(c *gin.Context) {
	if err := s.store.DeleteMention(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mention not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "mention deleted"})
}

// ─── Analytics ───────────────────────────────────────────────────────────────

func (s *Server) sentimentDistribution(c *gin.Context) {
	days := intQuery(c, "days", 7)
	since := time.Now().UTC().AddDate(0, 0, -days)

	counts, err := s.store.SentimentCounts(since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query sentiment distribution"})
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"positive": counts[models.SentimentPositive],
		"negative": counts[models.SentimentNegative],
		"neutral":  counts[models.SentimentNeutral],
		"total":    total,
	})
}

func (s *Server) topicDistribution(c *gin.Context) {
	days := intQuery(c, "days", 7)
	limit := intQuery(c, "limit", 10)
	since := time.Now().UTC().AddDate(0, 0, -days)

	topics, err := s.store.TopicCounts(since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query topic distribution"})
		return
	}
	if topics == nil {
		topics = []models.TopicCount{}
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *Server) mentionTimeline(c *gin.Context) {
	days := intQuery(c, "days", 7)
	granularity := c.DefaultQuery("granularity", models.BucketDay)
	since := time.Now().UTC().AddDate(0, 0, -days)

	points, err := s.store.CountsByBucket(since, granularity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if points == nil {
		points = []models.SeriesPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"timeline": points})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
