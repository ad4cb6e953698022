//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package repository

import (
	"context"
	"database/sql"
	"time"

	"persona/backend/internal/model"
	"persona/backend/pkg/snowflake"
)

// UnknownQuestionRepository stores questions the persona could not answer.
type UnknownQuestionRepository interface {
	Create(ctx context.Context, userID *int64, question string) (model.UnknownQuestion, error)
	List(ctx context.Context, limit int) ([]model.UnknownQuestion, error)
}

type unknownQuestionRepository struct {
	db *sql.DB
}

// NewUnknownQuestionRepository creates a new unknown question repository.
func NewUnknownQuestionRepository(db *sql.DB) UnknownQuestionRepository {
	return &unknownQuestionRepository{db: db}
}

func (r *unknownQuestionRepository) Create(ctx context.Context, userID *int64, question string) (model.UnknownQuestion, error) {
	q := model.UnknownQuestion{
		ID:        snowflake.NextID(),
		UserID:    userID,
		Question:  question,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO unknown_questions (id, user_id, question, created_at) VALUES (?, ?, ?, ?)
	`, q.ID, nullableInt64(userID), q.Question, formatTime(q.CreatedAt))
	if err != nil {
		return model.UnknownQuestion{}, err
	}
	return q, nil
}

// List returns the newest questions first.
func (r *unknownQuestionRepository) List(ctx context.Context, limit int) ([]model.UnknownQuestion, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, question, created_at FROM unknown_questions ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.UnknownQuestion
	for rows.Next() {
		var q model.UnknownQuestion
		var userID sql.NullInt64
		var createdAt string
		if err := rows.Scan(&q.ID, &userID, &q.Question, &createdAt); err != nil {
			return nil, err
		}
		q.UserID = int64Ptr(userID)
		q.CreatedAt, _ = parseTime(createdAt)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
