package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteRepositoryAddRemove(t *testing.T) {
	db, mock := newRepoMock(t, "sqlmock")
	repo := NewFavoriteRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO presentation_favorites (user_id, presentation_id) VALUES ($1, $2) ON CONFLICT DO NOTHING")).
		WithArgs("user-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM presentation_favorites WHERE user_id = $1 AND presentation_id = $2")).
		WithArgs("user-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Add(context.Background(), "user-1", "p1"))
	require.NoError(t, repo.Remove(context.Background(), "user-1", "p1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepositoryListIDs(t *testing.T) {
	db, mock := newRepoMock(t, "sqlmock")
	repo := NewFavoriteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT presentation_id FROM presentation_favorites WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"presentation_id"}).AddRow("p1").AddRow("p3"))

	ids, err := repo.ListIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "p3")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepositoryListIDsError(t *testing.T) {
	db, mock := newRepoMock(t, "sqlmock")
	repo := NewFavoriteRepository(db)

	mock.ExpectQuery("presentation_favorites").WillReturnError(errors.New("boom"))

	_, err := repo.ListIDs(context.Background(), "user-1")
	assert.Error(t, err)
}
