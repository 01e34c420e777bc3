package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, user_id, title, description, status, priority, category, due_date, created_at, completed_at, tags, subtasks`

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var subtasks []byte
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Category, &t.DueDate, &t.CreatedAt, &t.CompletedAt, &t.Tags, &subtasks,
	)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(subtasks, &t.Subtasks); err != nil {
		return t, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.Completed = t.IsCompleted()
	return t, nil
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	subtasks, err := json.Marshal(t.Subtasks)
	if err != nil {
		return t, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, priority, category, due_date, completed_at, tags, subtasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+taskColumns+`
	`, uuid.NewString(), t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.Category, t.DueDate, t.CompletedAt, t.Tags, subtasks)

	return scanTask(row)
}

func (r *TaskRepo) List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	// Опциональные фильтры складываются через AND, поиск - подстрока без учета регистра
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR priority = $3)
		  AND ($4::text IS NULL OR category = $4)
		  AND ($5::text IS NULL OR title ILIKE '%' || $5 || '%')
		ORDER BY created_at DESC, id DESC
	`, userID, filter.Status, filter.Priority, filter.Category, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (model.Task, error) {
	var tags any
	if patch.Tags != nil {
		tags = *patch.Tags
	}
	var subtasks []byte
	if patch.Subtasks != nil {
		var err error
		subtasks, err = json.Marshal(*patch.Subtasks)
		if err != nil {
			return model.Task{}, err
		}
	}

	// SET-выражения видят старую строку, поэтому CASE по status сравнивает
	// новый статус со старым и ведет completed_at на переходах
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET
			title       = COALESCE($3, title),
			description = COALESCE($4, description),
			priority    = COALESCE($5, priority),
			category    = COALESCE($6, category),
			due_date    = COALESCE($7, due_date),
			tags        = COALESCE($8::text[], tags),
			subtasks    = COALESCE($9::jsonb, subtasks),
			completed_at = CASE
				WHEN COALESCE($10, status) = 'completed' AND status <> 'completed' THEN now()
				WHEN COALESCE($10, status) <> 'completed' THEN NULL
				ELSE completed_at
			END,
			status      = COALESCE($10, status)
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns+`
	`, taskID, userID, patch.Title, patch.Description, patch.Priority,
		patch.Category, patch.DueDate, tags, subtasks, patch.Status)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

// Delete возвращает, была ли строка реально удалена. Отсутствие строки
// не ошибка - повторный delete должен проходить успешно.
func (r *TaskRepo) Delete(ctx context.Context, userID, taskID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
