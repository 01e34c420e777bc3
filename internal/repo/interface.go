package repo

import (
	"context"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
)

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// TaskRepository определяет интерфейс для работы с задачами.
// Все операции замкнуты на владельца: задача чужого пользователя
// не видна уже на уровне запроса к БД.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, userID, taskID string) (bool, error)
}

// CategoryRepository определяет интерфейс для работы с категориями
type CategoryRepository interface {
	Create(ctx context.Context, c model.Category) (model.Category, error)
	List(ctx context.Context, userID string) ([]model.Category, error)
}
