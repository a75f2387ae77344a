package gormstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/errors"
	"github.com/agentstation/contactbridge/pkg/runlog"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestStoreReadAll(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"fingerprint", "source", "payload", "status", "digest", "created_at", "updated_at"}).
		AddRow("home:email:jane@x.com", "home", []byte(`{"names":[]}`), "", "1abc2", now, now).
		AddRow("work:email:john@y.com", "work", []byte(`{"names":[]}`), "imported", "9xyz8", now, now)
	mock.ExpectQuery("SELECT \\* FROM `contact_buffer`").WillReturnRows(rows)

	got, err := NewStore(db).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "home:email:jane@x.com", got[0].Fingerprint)
	assert.Equal(t, buffer.StatusPending, got[0].Status)
	assert.Equal(t, buffer.StatusConsumed, got[1].Status)
	assert.Equal(t, "9xyz8", got[1].Digest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpsert(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `contact_buffer`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewStore(db).Upsert(context.Background(), buffer.Row{
		Fingerprint: "home:email:jane@x.com",
		Source:      "home",
		Payload:     []byte(`{"names":[]}`),
		Status:      buffer.StatusPending,
		Digest:      "1abc2",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreMarkConsumed(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `contact_buffer` SET").
		WithArgs("imported", sqlmock.AnyArg(), "home:email:jane@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewStore(db).MarkConsumed(context.Background(), "home:email:jane@x.com")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreReadAllError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `contact_buffer`").
		WillReturnError(errors.New("connection gone"))

	_, err := NewStore(db).ReadAll(context.Background())
	require.Error(t, err)
	var se *errors.StoreError
	assert.ErrorAs(t, err, &se)
}

func TestLogSinkAppend(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_log`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := NewLogSink(db).Append(context.Background(), runlog.Entry{
		Timestamp: time.Now().UTC(),
		Account:   "home",
		Direction: runlog.DirectionSync,
		Pushed:    2,
		New:       1,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogSinkTrim(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `sync_log`")).
		WithArgs(500).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := NewLogSink(db).Trim(context.Background(), 500)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogSinkTrimDisabled(t *testing.T) {
	db, mock := setupMockDB(t)

	// keep <= 0 never touches the database.
	require.NoError(t, NewLogSink(db).Trim(context.Background(), 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockAcquireRelease(t *testing.T) {
	db, mock := setupMockDB(t)
	lk := NewLock(db, "contactbridge-sync")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_LOCK(?, ?)")).
		WithArgs("contactbridge-sync", 30).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT RELEASE_LOCK(?)")).
		WithArgs("contactbridge-sync").
		WillReturnRows(sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(1))

	require.NoError(t, lk.Acquire(context.Background(), 30*time.Second))
	require.NoError(t, lk.Release())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockAcquireSubSecondTimeout(t *testing.T) {
	db, mock := setupMockDB(t)
	lk := NewLock(db, "contactbridge-sync")

	// A sub-second timeout rounds up to a one-second wait instead of
	// degrading to a non-blocking attempt with a zero wait.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_LOCK(?, ?)")).
		WithArgs("contactbridge-sync", 1).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))

	require.NoError(t, lk.Acquire(context.Background(), 500*time.Millisecond))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockAcquireTimeout(t *testing.T) {
	db, mock := setupMockDB(t)
	lk := NewLock(db, "contactbridge-sync")

	// GET_LOCK returns 0 when the wait times out.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_LOCK(?, ?)")).
		WithArgs("contactbridge-sync", 5).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(0))

	err := lk.Acquire(context.Background(), 5*time.Second)
	require.Error(t, err)
	assert.True(t, errors.IsLockTimeout(err))
}

func TestLockReleaseNotHeld(t *testing.T) {
	db, mock := setupMockDB(t)
	lk := NewLock(db, "contactbridge-sync")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT RELEASE_LOCK(?)")).
		WithArgs("contactbridge-sync").
		WillReturnRows(sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(0))

	err := lk.Release()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrLockNotHeld)
}
