package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV persists the store's JSON snapshots in a single key/value table.
// Sqlite is the default (one local file, like the browser original's
// localStorage); postgres is a drop-in for shared deployments.
type KV struct {
	DB *gorm.DB
}

type entry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv_entries" }

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// Open connects to postgres when dsn is set, otherwise to the sqlite file
// at path, and migrates the kv table.
func Open(ctx context.Context, dsn, path string) (*KV, error) {
	var dialector gorm.Dialector
	if dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		if path == "" {
			return nil, fmt.Errorf("kvstore: no DSN and no sqlite path")
		}
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("kvstore: sql.DB: %w", err)
	}
	if dsn != "" {
		configurePool(sqlDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("kvstore: ping: %w", err)
		}
	}

	if err := db.WithContext(ctx).AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("kvstore: migrate: %w", err)
	}

	return &KV{DB: db}, nil
}

func (kv *KV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var e entry
	err := kv.DB.WithContext(ctx).First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (kv *KV) Save(ctx context.Context, key string, data []byte) error {
	e := entry{Key: key, Value: data, UpdatedAt: time.Now().UTC()}
	return kv.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (kv *KV) Close() error {
	sqlDB, err := kv.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
