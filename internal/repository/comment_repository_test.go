package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivakharbanda/journalclub/internal/models"
)

var commentTestColumns = []string{
	"id", "target_type", "target_id", "user_id", "username",
	"parent_id", "body", "replies_count", "created_at",
}

func TestCommentRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("top-level comment touches no ancestors", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO comments").
			WithArgs(models.SavableEpisode, uint64(3), uint64(42), sql.NullInt64{}, "Great episode", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(100, 1))
		mock.ExpectCommit()
		mock.ExpectQuery("SELECT c.id, c.target_type").
			WithArgs(uint64(100)).
			WillReturnRows(sqlmock.NewRows(commentTestColumns).
				AddRow(100, "episode", 3, 42, "alice", nil, "Great episode", 0, time.Now()))

		comment, err := repo.Create(ctx, &models.Comment{
			TargetType: models.SavableEpisode,
			TargetID:   3,
			UserID:     42,
			Body:       "Great episode",
		})
		require.NoError(t, err)
		require.NotNil(t, comment)
		assert.Equal(t, uint64(100), comment.ID)
		assert.Equal(t, "alice", comment.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reply increments the whole ancestor chain", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewCommentRepository(db)

		parent := sql.NullInt64{Int64: 5, Valid: true}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO comments").
			WithArgs(models.SavableEpisode, uint64(3), uint64(42), parent, "Reply", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(101, 1))

		// Parent 5 is itself a reply to 2; both counts must rise.
		mock.ExpectExec("UPDATE comments SET replies_count").
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT parent_id FROM comments").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"parent_id"}).AddRow(2))
		mock.ExpectExec("UPDATE comments SET replies_count").
			WithArgs(int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT parent_id FROM comments").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"parent_id"}).AddRow(nil))
		mock.ExpectCommit()
		mock.ExpectQuery("SELECT c.id, c.target_type").
			WithArgs(uint64(101)).
			WillReturnRows(sqlmock.NewRows(commentTestColumns).
				AddRow(101, "episode", 3, 42, "bob", 5, "Reply", 0, time.Now()))

		comment, err := repo.Create(ctx, &models.Comment{
			TargetType: models.SavableEpisode,
			TargetID:   3,
			UserID:     42,
			ParentID:   parent,
			Body:       "Reply",
		})
		require.NoError(t, err)
		require.NotNil(t, comment)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository_ListThread(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)

	now := time.Now()
	mock.ExpectQuery("WITH RECURSIVE thread").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(commentTestColumns).
			AddRow(6, "episode", 3, 42, "alice", 5, "first", 1, now).
			AddRow(7, "episode", 3, 43, "bob", 6, "second", 0, now.Add(time.Minute)))

	thread, err := repo.ListThread(ctx, 5)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Body)
	assert.Equal(t, "second", thread[1].Body)
	require.NoError(t, mock.ExpectationsWereMet())
}
