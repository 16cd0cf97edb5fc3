// Package journal persists an append-only trade log in SQLite via Gorm. It is
// a side record for auditing: the account snapshot stays authoritative.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"paperdesk/internal/trader"
)

type tradeModel struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"`
	TradeID        string         `gorm:"uniqueIndex;size:64"`
	Action         string         `gorm:"size:8;index"`
	Code           string         `gorm:"size:16;index"`
	Name           string         `gorm:"size:64"`
	Price          float64        `gorm:""`
	Hands          int            `gorm:""`
	Shares         int            `gorm:""`
	CashDelta      float64        `gorm:""`
	CashAfter      float64        `gorm:""`
	RealizedProfit float64        `gorm:""`
	Details        datatypes.JSON `gorm:"type:json"`
	CreatedAt      int64          `gorm:"index"`
}

func (tradeModel) TableName() string { return "trades" }

// Store writes trade records to a local SQLite file.
type Store struct {
	db *gorm.DB
}

// Open creates the file (and parent directory) if needed and migrates the
// trades table.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal: database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&tradeModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

// Append inserts one trade row.
func (s *Store) Append(ctx context.Context, rec trader.JournalRecord) error {
	details, err := json.Marshal(map[string]any{
		"hands":      rec.Hands,
		"cash_after": rec.CashAfter,
	})
	if err != nil {
		return err
	}
	row := tradeModel{
		TradeID:        rec.TradeID,
		Action:         rec.Action,
		Code:           rec.Code,
		Name:           rec.Name,
		Price:          rec.Price,
		Hands:          rec.Hands,
		Shares:         rec.Shares,
		CashDelta:      rec.CashDelta,
		CashAfter:      rec.CashAfter,
		RealizedProfit: rec.RealizedProfit,
		Details:        datatypes.JSON(details),
		CreatedAt:      rec.CreatedAt.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Recent returns the latest trades, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]trader.JournalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []tradeModel
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]trader.JournalRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, recordFromModel(r))
	}
	return out, nil
}

func recordFromModel(r tradeModel) trader.JournalRecord {
	return trader.JournalRecord{
		TradeID:        r.TradeID,
		Action:         r.Action,
		Code:           r.Code,
		Name:           r.Name,
		Price:          r.Price,
		Hands:          r.Hands,
		Shares:         r.Shares,
		CashDelta:      r.CashDelta,
		CashAfter:      r.CashAfter,
		RealizedProfit: r.RealizedProfit,
		CreatedAt:      time.UnixMilli(r.CreatedAt),
	}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
