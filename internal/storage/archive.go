// Package storage persists inspection session snapshots to sqlite so network
// and console captures survive the process.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"cdpinspect/internal/config"
	ilog "cdpinspect/internal/logger"
	"cdpinspect/pkg/domain"
)

// SessionRecord is one archived snapshot of the derived state at disconnect
// (or explicit archive) time. Requests and console logs are stored as JSON.
type SessionRecord struct {
	ID          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	TargetURL   string
	TargetTitle string
	Requests    []byte
	ConsoleLogs []byte
}

// Archive is the sqlite-backed session store.
type Archive struct {
	db  *gorm.DB
	log ilog.Logger
}

// Open connects to the configured sqlite database and migrates the schema.
func Open(cfg *config.Config, l ilog.Logger) (*Archive, error) {
	if l == nil {
		l = ilog.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(cfg.Sqlite.Dsn), &gorm.Config{
		Logger: NewGormLogger(l),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: cfg.Sqlite.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Sqlite.Dsn, err)
	}
	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate session schema: %w", err)
	}
	return &Archive{db: db, log: l}, nil
}

// SaveSession persists one snapshot and returns its session id.
func (a *Archive) SaveSession(target domain.Target, requests []domain.NetworkRequest, logs []domain.ConsoleLog) (domain.SessionID, error) {
	reqJSON, err := json.Marshal(requests)
	if err != nil {
		return "", fmt.Errorf("marshal requests: %w", err)
	}
	logJSON, err := json.Marshal(logs)
	if err != nil {
		return "", fmt.Errorf("marshal console logs: %w", err)
	}

	rec := SessionRecord{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		TargetURL:   target.URL,
		TargetTitle: target.Title,
		Requests:    reqJSON,
		ConsoleLogs: logJSON,
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	a.log.Info("session archived", "session", rec.ID, "requests", len(requests), "consoleLogs", len(logs))
	return domain.SessionID(rec.ID), nil
}

// Sessions returns the most recent archived sessions, newest first.
func (a *Archive) Sessions(limit int) ([]SessionRecord, error) {
	var recs []SessionRecord
	q := a.db.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return recs, nil
}

// Session loads one archived session by id.
func (a *Archive) Session(id domain.SessionID) (*SessionRecord, error) {
	var rec SessionRecord
	if err := a.db.First(&rec, "id = ?", string(id)).Error; err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return &rec, nil
}
