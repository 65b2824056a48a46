// Package storage provides the persistence layer for mentions, alerts, and
// alert configurations, backed by SQLite through GORM.
//
// The store exposes a narrow contract: transactional bulk insert of enriched
// mentions, creation-time range queries with time-bucket and sentiment
// grouping for the anomaly detector, and alert/alert-config CRUD with the
// active-by-type lookup used for deduplication.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

// Store wraps the database handle. All methods are safe for concurrent use;
// SQLite serializes writers underneath.
type Store struct {
	db *gorm.DB
}

// MentionFilter narrows ListMentions results. Zero values mean "no filter".
type MentionFilter struct {
	Source    string
	Sentiment string
	Topic     string
	Limit     int
	Offset    int
}

// AlertFilter narrows ListAlerts results. Active is a tri-state pointer so
// callers can ask for active-only, resolved-only, or all.
type AlertFilter struct {
	Active    *bool
	AlertType string
	Limit     int
}

// New opens (or creates) the SQLite database at path and migrates the schema.
// Use ":memory:" for an ephemeral store in tests.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.Mention{}, &models.Alert{}, &models.AlertConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// ─── Mentions ────────────────────────────────────────────────────────────────

// BulkInsertMentions writes the batch inside a single transaction. If any row
// fails validation or insertion, the whole batch is rolled back.
func (s *Store) BulkInsertMentions(mentions []models.Mention) error {
	if len(mentions) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range mentions {
			if err := mentions[i].Validate(); err != nil {
				return fmt.Errorf("invalid mention: %w", err)
			}
		}
		if err := tx.Create(&mentions).Error; err != nil {
			return fmt.Errorf("failed to insert mentions: %w", err)
		}
		return nil
	})
}

// ListMentions returns mentions matching the filter, newest first.
func (s *Store) ListMentions(filter MentionFilter) ([]models.Mention, error) {
	q := s.db.Model(&models.Mention{})
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if filter.Sentiment != "" {
		q = q.Where("sentiment = ?", filter.Sentiment)
	}
	if filter.Topic != "" {
		q = q.Where("topic = ?", filter.Topic)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var mentions []models.Mention
	if err := q.Order("created_at DESC").Find(&mentions).Error; err != nil {
		return nil, fmt.Errorf("failed to list mentions: %w", err)
	}
	return mentions, nil
}

// GetMention retrieves a mention by ID.
func (s *Store) GetMention(id string) (*models.Mention, error) {
	var mention models.Mention
	if err := s.db.First(&mention, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("mention not found: %s", id)
	}
	return &mention, nil
}

// UpdateMentionLabels is the explicit correction path for a mention's
// sentiment and topic. Sentiment label and score are updated together.
func (s *Store) UpdateMentionLabels(id, sentiment string, score float64, topic string) (*models.Mention, error) {
	mention, err := s.GetMention(id)
	if err != nil {
		return nil, err
	}

	mention.Sentiment = sentiment
	mention.SentimentScore = score
	mention.Topic = topic
	if err := mention.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mention update: %w", err)
	}

	if err := s.db.Save(mention).Error; err != nil {
		return nil, fmt.Errorf("failed to update mention: %w", err)
	}
	return mention, nil
}

// DeleteMention removes a mention. Deletion only happens through this
// explicit operator path.
func (s *Store) DeleteMention(id string) error {
	res := s.db.Delete(&models.Mention{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete mention: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mention not found: %s", id)
	}
	return nil
}

// CountMentions returns the total number of persisted mentions.
func (s *Store) CountMentions() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Mention{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count mentions: %w", err)
	}
	return count, nil
}

// ─── Time-series queries ─────────────────────────────────────────────────────

// CountsByBucket returns the mention counts per time bucket for mentions
// created at or after since. Bucket is models.BucketHour or models.BucketDay.
// Buckets with no mentions are omitted; points are ordered by bucket start.
func (s *Store) CountsByBucket(since time.Time, bucket string) ([]models.SeriesPoint, error) {
	if bucket != models.BucketHour && bucket != models.BucketDay {
		return nil, fmt.Errorf("invalid bucket granularity: %s", bucket)
	}

	var stamps []time.Time
	if err := s.db.Model(&models.Mention{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, fmt.Errorf("failed to query mention timestamps: %w", err)
	}

	var points []models.SeriesPoint
	for _, ts := range stamps {
		start := truncateToBucket(ts.UTC(), bucket)
		if n := len(points); n > 0 && points[n-1].Bucket.Equal(start) {
			points[n-1].Count++
			continue
		}
		points = append(points, models.SeriesPoint{Bucket: start, Count: 1})
	}
	return points, nil
}

// SentimentCounts returns the number of mentions per sentiment label for
// mentions created at or after since. All three labels are present in the
// result, with zero counts where no mentions exist.
func (s *Store) SentimentCounts(since time.Time) (map[string]int, error) {
	type row struct {
		Sentiment string
		Count     int
	}
	var rows []row
	if err := s.db.Model(&models.Mention{}).
		Select("sentiment, count(*) as count").
		Where("created_at >= ?", since).
		Group("sentiment").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query sentiment counts: %w", err)
	}

	counts := map[string]int{
		models.SentimentPositive: 0,
		models.SentimentNegative: 0,
		models.SentimentNeutral:  0,
	}
	for _, r := range rows {
		if _, ok := counts[r.Sentiment]; ok {
			counts[r.Sentiment] = r.Count
		}
	}
	return counts, nil
}

// TopicCounts returns the top topics by mention count for mentions created
// at or after since.
func (s *Store) TopicCounts(since time.Time, limit int) ([]models.TopicCount, error) {
	var rows []models.TopicCount
	q := s.db.Model(&models.Mention{}).
		Select("topic, count(*) as count").
		Where("created_at >= ?", since).
		Group("topic").
		Order("count DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query topic counts: %w", err)
	}
	return rows, nil
}

func truncateToBucket(t time.Time, bucket string) time.Time {
	if bucket == models.BucketDay {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t.Truncate(time.Hour)
}

// ─── Alerts ──────────────────────────────────────────────────────────────────

// CreateAlertIfNoneActive inserts the alert unless an active alert of the
// same type already exists. The check and insert run inside one transaction
// so the dedup invariant holds under overlapping pipeline runs. Returns true
// when the alert was created.
func (s *Store) CreateAlertIfNoneActive(alert *models.Alert) (bool, error) {
	if err := alert.Validate(); err != nil {
		return false, fmt.Errorf("invalid alert: %w", err)
	}

	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Alert{}).
			Where("alert_type = ? AND active = ?", alert.AlertType, true).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check active alerts: %w", err)
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(alert).Error; err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

// GetAlert retrieves an alert by ID.
func (s *Store) GetAlert(id string) (*models.Alert, error) {
	var alert models.Alert
	if err := s.db.First(&alert, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("alert not found: %s", id)
	}
	return &alert, nil
}

// ListAlerts returns alerts matching the filter, newest first.
func (s *Store) ListAlerts(filter AlertFilter) ([]models.Alert, error) {
	q := s.db.Model(&models.Alert{})
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}
	if filter.AlertType != "" {
		q = q.Where("alert_type = ?", filter.AlertType)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var alerts []models.Alert
	if err := q.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// ResolveAlert marks an alert inactive with the given resolution time.
// Resolving an already-resolved alert is a no-op; the stored record is
// returned either way.
func (s *Store) ResolveAlert(id string, resolvedAt time.Time) (*models.Alert, error) {
	alert, err := s.GetAlert(id)
	if err != nil {
		return nil, err
	}
	if !alert.Active {
		return alert, nil
	}

	res := s.db.Model(&models.Alert{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{"active": false, "resolved_at": resolvedAt})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to resolve alert: %w", res.Error)
	}
	return s.GetAlert(id)
}

// DeleteAlert removes an alert by explicit operator action.
func (s *Store) DeleteAlert(id string) error {
	res := s.db.Delete(&models.Alert{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("alert not found: %s", id)
	}
	return nil
}

// ─── Alert configs ───────────────────────────────────────────────────────────

// CreateAlertConfig stores a new detector configuration.
func (s *Store) CreateAlertConfig(cfg *models.AlertConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid alert config: %w", err)
	}
	if err := s.db.Create(cfg).Error; err != nil {
		return fmt.Errorf("failed to insert alert config: %w", err)
	}
	return nil
}

// GetAlertConfig retrieves an alert config by ID.
func (s *Store) GetAlertConfig(id string) (*models.AlertConfig, error) {
	var cfg models.AlertConfig
	if err := s.db.First(&cfg, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("alert config not found: %s", id)
	}
	return &cfg, nil
}

// ListAlertConfigs returns all alert configs, optionally only enabled ones.
func (s *Store) ListAlertConfigs(enabledOnly bool) ([]models.AlertConfig, error) {
	q := s.db.Model(&models.AlertConfig{})
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}

	var cfgs []models.AlertConfig
	if err := q.Order("created_at ASC").Find(&cfgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list alert configs: %w", err)
	}
	return cfgs, nil
}

// UpdateAlertConfig replaces the stored config fields.
func (s *Store) UpdateAlertConfig(cfg *models.AlertConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid alert config: %w", err)
	}
	res := s.db.Model(&models.AlertConfig{}).Where("id = ?", cfg.ID).Updates(map[string]interface{}{
		"name":         cfg.Name,
		"alert_type":   cfg.AlertType,
		"threshold":    cfg.Threshold,
		"window_hours": cfg.WindowHours,
		"enabled":      cfg.Enabled,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update alert config: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("alert config not found: %s", cfg.ID)
	}
	return nil
}

// DeleteAlertConfig removes an alert config.
func (s *Store) DeleteAlertConfig(id string) error {
	res := s.db.Delete(&models.AlertConfig{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete alert config: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("alert config not found: %s", id)
	}
	return nil
}
