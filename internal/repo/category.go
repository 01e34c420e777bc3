package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
)

type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Create(ctx context.Context, c model.Category) (model.Category, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, user_id, name, color, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, color, icon
	`, uuid.NewString(), c.UserID, c.Name, c.Color, c.Icon).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon,
	)
	return c, err
}

func (r *CategoryRepo) List(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, color, icon
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
