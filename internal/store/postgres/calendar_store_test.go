package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/planer/internal/domain/calendar"
)

func TestCalendarStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCalendarStore(db)
	c := calendar.NewCalendar(uuid.New(), uuid.New(), "Q3 launches", "")

	mock.ExpectExec(`INSERT INTO calendars`).
		WithArgs(c.ID(), c.UserID(), c.ClientID(), c.Name(), c.Description(), c.CreatedAt()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Create(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarStoreFindByIDFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCalendarStore(db)
	id, userID, clientID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, user_id, client_id, name, description, created_at\s+FROM calendars WHERE id=\$1 AND client_id=\$2`).
		WithArgs(id, clientID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "client_id", "name", "description", "created_at"}).
			AddRow(id, userID, clientID, "Q3 launches", "", now))

	got, err := s.FindByID(context.Background(), clientID, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID())
	assert.Equal(t, "Q3 launches", got.Name())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarStoreFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCalendarStore(db)
	id, clientID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT id, user_id, client_id, name, description, created_at\s+FROM calendars WHERE id=\$1 AND client_id=\$2`).
		WithArgs(id, clientID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "client_id", "name", "description", "created_at"}))

	_, err = s.FindByID(context.Background(), clientID, id)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCalendarStore(db)
	id, clientID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM comments WHERE calendar_id=\$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM calendar_share_links WHERE calendar_id=\$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM calendars WHERE id=\$1 AND client_id=\$2`).
		WithArgs(id, clientID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), clientID, id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarStoreDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCalendarStore(db)
	id, clientID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM comments WHERE calendar_id=\$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM calendar_share_links WHERE calendar_id=\$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM calendars WHERE id=\$1 AND client_id=\$2`).
		WithArgs(id, clientID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = s.Delete(context.Background(), clientID, id)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
