package activities_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/study-lab/internal/activities"
	"github.com/JaimeStill/study-lab/pkg/logging"
	"github.com/JaimeStill/study-lab/pkg/pagination"
)

var cols = []string{"id", "user_id", "activity_type", "data", "created_at"}

func newSystem(t *testing.T) (activities.System, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return activities.New(db, logging.Discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}), mock
}

func TestRecord(t *testing.T) {
	sys, mock := newSystem(t)
	noteID := uuid.NewString()
	data := map[string]any{"note_id": noteID, "title": "Biology", "file_count": 2}
	payload, err := json.Marshal(data)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO activities\(`).
		WithArgs(sqlmock.AnyArg(), "student-1", activities.TypeNoteUpload, payload).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.NewString(), "student-1", activities.TypeNoteUpload, payload, time.Now()))
	mock.ExpectCommit()

	a, err := sys.Record(context.Background(), activities.RecordCommand{
		UserID:       "student-1",
		ActivityType: activities.TypeNoteUpload,
		Data:         data,
	})

	require.NoError(t, err)
	assert.Equal(t, noteID, a.Data["note_id"])
	assert.Equal(t, float64(2), a.Data["file_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_RequiresUserAndType(t *testing.T) {
	sys, mock := newSystem(t)

	_, err := sys.Record(context.Background(), activities.RecordCommand{ActivityType: activities.TypeNoteText})
	assert.ErrorIs(t, err, activities.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_FiltersByUserAndType(t *testing.T) {
	sys, mock := newSystem(t)
	user, kind := "student-1", activities.TypeQuizGenerated

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM public.activities a WHERE a.user_id = \$1 AND a.activity_type IN \(\$2\)`).
		WithArgs(user, kind).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM public.activities a WHERE .* ORDER BY a.created_at DESC, a.id ASC LIMIT 20 OFFSET 0`).
		WithArgs(user, kind).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.NewString(), user, kind, []byte(`{"quiz_id":"q1"}`), time.Now()))

	result, err := sys.List(context.Background(), pagination.PageRequest{}, activities.Filters{UserID: &user, ActivityTypes: []string{kind}})

	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "q1", result.Data[0].Data["quiz_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
