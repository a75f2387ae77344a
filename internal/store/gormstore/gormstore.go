// Package gormstore backs the shared buffer, the run log, and the sync
// lock with a MySQL database, so two parties on different hosts can sync
// through one table the way they would through one shared sheet.
package gormstore

import (
	"context"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/errors"
	"github.com/agentstation/contactbridge/pkg/lock"
	"github.com/agentstation/contactbridge/pkg/runlog"
)

var (
	_ buffer.Store = (*Store)(nil)
	_ runlog.Sink  = (*LogSink)(nil)
	_ lock.Locker  = (*Lock)(nil)
)

// BufferRow is one row of the shared buffer table.
type BufferRow struct {
	Fingerprint string    `gorm:"column:fingerprint;primaryKey;size:255"`
	Source      string    `gorm:"column:source;size:64;index"`
	Payload     []byte    `gorm:"column:payload"`
	Status      string    `gorm:"column:status;size:32"`
	Digest      string    `gorm:"column:digest;size:16"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name for the buffer.
func (BufferRow) TableName() string {
	return "contact_buffer"
}

// LogRow is one row of the run-log table.
type LogRow struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"column:timestamp"`
	Account   string    `gorm:"column:account;size:64"`
	Direction string    `gorm:"column:direction;size:16"`
	Pushed    int       `gorm:"column:pushed"`
	New       int       `gorm:"column:new"`
	Merged    int       `gorm:"column:merged"`
	Failed    int       `gorm:"column:failed"`
	Errors    string    `gorm:"column:errors;type:text"`
}

// TableName overrides the table name for the run log.
func (LogRow) TableName() string {
	return "sync_log"
}

// Open connects to MySQL and returns the shared handle.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.WrapStore("connecting to database", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the buffer and run-log tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&BufferRow{}, &LogRow{}); err != nil {
		return errors.WrapStore("migrating schema", err)
	}
	return nil
}

// Store implements buffer.Store on the contact_buffer table.
type Store struct {
	db *gorm.DB
}

// NewStore creates a buffer store over an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ReadAll returns every buffer row in insertion order.
func (s *Store) ReadAll(ctx context.Context) ([]buffer.Row, error) {
	var rows []BufferRow
	if err := s.db.WithContext(ctx).Order("created_at, fingerprint").Find(&rows).Error; err != nil {
		return nil, errors.WrapStore("reading buffer", err)
	}

	out := make([]buffer.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, buffer.Row{
			Fingerprint: row.Fingerprint,
			Source:      row.Source,
			Payload:     row.Payload,
			Status:      buffer.Status(row.Status),
			Digest:      row.Digest,
		})
	}
	return out, nil
}

// Upsert inserts the row or overwrites the existing row with the same
// fingerprint.
func (s *Store) Upsert(ctx context.Context, row buffer.Row) error {
	rec := BufferRow{
		Fingerprint: row.Fingerprint,
		Source:      row.Source,
		Payload:     row.Payload,
		Status:      string(row.Status),
		Digest:      row.Digest,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fingerprint"}},
			DoUpdates: clause.AssignmentColumns([]string{"source", "payload", "status", "digest", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return errors.WrapStore("upserting buffer row", err)
	}
	return nil
}

// MarkConsumed flips the row's status. A missing fingerprint is not an
// error, matching the in-memory store.
func (s *Store) MarkConsumed(ctx context.Context, fingerprint string) error {
	err := s.db.WithContext(ctx).
		Model(&BufferRow{}).
		Where("fingerprint = ?", fingerprint).
		Update("status", string(buffer.StatusConsumed)).Error
	if err != nil {
		return errors.WrapStore("marking buffer row consumed", err)
	}
	return nil
}

// LogSink implements runlog.Sink on the sync_log table.
type LogSink struct {
	db *gorm.DB
}

// NewLogSink creates a run-log sink over an open database handle.
func NewLogSink(db *gorm.DB) *LogSink {
	return &LogSink{db: db}
}

// Append stores one run-log entry.
func (s *LogSink) Append(ctx context.Context, entry runlog.Entry) error {
	row := LogRow{
		Timestamp: entry.Timestamp,
		Account:   entry.Account,
		Direction: string(entry.Direction),
		Pushed:    entry.Pushed,
		New:       entry.New,
		Merged:    entry.Merged,
		Failed:    entry.Failed,
		Errors:    entry.Errors,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.WrapStore("appending run log", err)
	}
	return nil
}

// Recent returns the newest limit entries, newest first.
func (s *LogSink) Recent(ctx context.Context, limit int) ([]runlog.Entry, error) {
	var rows []LogRow
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, errors.WrapStore("reading run log", err)
	}

	out := make([]runlog.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, runlog.Entry{
			Timestamp: row.Timestamp,
			Account:   row.Account,
			Direction: runlog.Direction(row.Direction),
			Pushed:    row.Pushed,
			New:       row.New,
			Merged:    row.Merged,
			Failed:    row.Failed,
			Errors:    row.Errors,
		})
	}
	return out, nil
}

// Trim deletes all but the newest keep entries. MySQL cannot delete from a
// table it subqueries, hence the derived table.
func (s *LogSink) Trim(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Exec(
		"DELETE FROM `sync_log` WHERE id NOT IN (SELECT id FROM (SELECT id FROM `sync_log` ORDER BY id DESC LIMIT ?) keepers)",
		keep,
	).Error
	if err != nil {
		return errors.WrapStore("trimming run log", err)
	}
	return nil
}

// Lock implements lock.Locker on MySQL advisory locks. Both parties must
// use the same lock name; the server releases the lock if the holder's
// connection dies, so a crashed run cannot wedge the other party.
type Lock struct {
	db   *gorm.DB
	name string
}

// NewLock creates an advisory lock with the given name.
func NewLock(db *gorm.DB, name string) *Lock {
	return &Lock{db: db, name: name}
}

// Acquire takes the named lock, waiting up to timeout. GET_LOCK waits in
// whole seconds, so sub-second timeouts round up to one second rather than
// degrading to a non-blocking attempt.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	seconds := int((timeout + time.Second - 1) / time.Second)
	var got int
	err := l.db.WithContext(ctx).
		Raw("SELECT GET_LOCK(?, ?)", l.name, seconds).
		Scan(&got).Error
	if err != nil {
		return errors.NewLockError(l.name, timeout.String(), err)
	}
	if got != 1 {
		return errors.NewLockError(l.name, timeout.String(), errors.ErrLockTimeout)
	}
	return nil
}

// Release frees the named lock.
func (l *Lock) Release() error {
	var got int
	err := l.db.Raw("SELECT RELEASE_LOCK(?)", l.name).Scan(&got).Error
	if err != nil {
		return errors.NewLockError(l.name, "", err)
	}
	if got != 1 {
		return errors.ErrLockNotHeld
	}
	return nil
}
