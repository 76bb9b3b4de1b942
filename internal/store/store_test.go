package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

func newStoreMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func identifier(t *testing.T, value any) model.Identifier {
	id, ok := model.NewIdentifier(value)
	require.True(t, ok)
	return id
}

func sampleEntries(t *testing.T) []model.ScheduleEntry {
	return []model.ScheduleEntry{
		{
			CourseId: identifier(t, "C1"), CourseCode: "CS101", CourseName: "Algorithms",
			FacultyId: identifier(t, 7), FacultyName: "Ada",
			ClassroomId: identifier(t, "R1"), ClassroomName: "Hall",
			TimeslotId: identifier(t, "T1"), TimeslotLabel: "Mon 9",
		},
		{
			CourseId: identifier(t, "C2"), CourseName: "Logic",
			FacultyId: identifier(t, 7), FacultyName: "Ada",
			ClassroomId: identifier(t, "R1"), ClassroomName: "Hall",
			TimeslotId: identifier(t, "T2"), TimeslotLabel: "Mon 10",
		},
	}
}

func TestNewRows(t *testing.T) {
	rows := NewRows(sampleEntries(t))

	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, "C1", rows[0].CourseID)
	assert.Equal(t, "7", rows[0].FacultyID)
	assert.Equal(t, "Mon 10", rows[1].TimeslotLabel)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestMemoryStore(t *testing.T) {
	//** Arrange
	store := NewMemoryStore()
	ctx := context.Background()

	//** Act
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Commit(ctx, sampleEntries(t)))
	first, _ := store.List(ctx)
	require.NoError(t, store.Clear(ctx))
	pending, _ := store.List(ctx)
	require.NoError(t, store.Commit(ctx, sampleEntries(t)[:1]))
	second, _ := store.List(ctx)

	//** Assert
	assert.Len(t, first, 2)
	assert.Equal(t, first, pending, "rows stay visible until the replacement is committed")
	assert.Len(t, second, 1)
}

func TestMemoryStoreAbortKeepsRows(t *testing.T) {
	//** Arrange
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, sampleEntries(t)))
	before, _ := store.List(ctx)

	//** Act
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Abort(ctx))
	after, _ := store.List(ctx)

	//** Assert
	assert.Equal(t, before, after)
}

func expectInsert(mock sqlmock.Sqlmock, position int, courseID string) *sqlmock.ExpectedExec {
	return mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WithArgs(sqlmock.AnyArg(), position, courseID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg())
}

func TestPostgresStoreReplacesInOneTransaction(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries")).WillReturnResult(sqlmock.NewResult(0, 4))
	expectInsert(mock, 0, "C1").WillReturnResult(sqlmock.NewResult(1, 1))
	expectInsert(mock, 1, "C2").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, store.Commit(context.Background(), sampleEntries(t)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreRollsBackFailedCommit(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries")).WillReturnResult(sqlmock.NewResult(0, 4))
	expectInsert(mock, 0, "C1").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	require.NoError(t, store.Clear(context.Background()))
	err := store.Commit(context.Background(), sampleEntries(t))
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAbort(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, store.Abort(context.Background()))
	require.NoError(t, store.Abort(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreList(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewPostgresStore(db)

	rows := sqlmock.NewRows([]string{"id", "position", "course_id", "course_code", "course_name", "faculty_id", "faculty_name", "classroom_id", "classroom_name", "timeslot_id", "timeslot_label", "created_at"}).
		AddRow("row-1", 0, "C1", "CS101", "Algorithms", "7", "Ada", "R1", "Hall", "T1", "Mon 9", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, position, course_id, course_code, course_name, faculty_id, faculty_name, classroom_id, classroom_name, timeslot_id, timeslot_label, created_at FROM timetable_entries ORDER BY position ASC")).
		WillReturnRows(rows)

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Algorithms", listed[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreMigrate(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS timetable_entries")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresStore(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
