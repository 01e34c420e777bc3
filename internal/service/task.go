package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
	"github.com/BuzzLyutic/taskflow-api/internal/repo"
)

// Publisher - канал рассылки событий изменений. Рассылка best-effort:
// ее отказ никогда не считается отказом самой мутации.
type Publisher interface {
	Publish(ownerID string, event model.Event)
}

type TaskService struct {
	repo      repo.TaskRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewTaskService(repo repo.TaskRepository, publisher Publisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create всегда берет владельца из аутентифицированного контекста,
// userId из тела запроса игнорируется
func (s *TaskService) Create(ctx context.Context, userID string, t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return t, ErrValidation
	}

	t.UserID = userID
	if t.Status == "" {
		t.Status = model.StatusTodo
		if t.Completed {
			t.Status = model.StatusCompleted
		}
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.IsCompleted() && t.CompletedAt == nil {
		now := time.Now()
		t.CompletedAt = &now
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return created, err
	}

	s.emit(userID, model.Event{Name: model.EventTaskCreated, Payload: created})
	return created, nil
}

func (s *TaskService) List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, userID, filter)
}

// Update применяет только переданные поля. Промах по id или чужая
// задача - это ErrorNotFound, а не тихий успех.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (model.Task, error) {
	normalizePatch(&patch)

	updated, err := s.repo.Update(ctx, userID, taskID, patch)
	if err != nil {
		return updated, err
	}

	s.emit(userID, model.Event{Name: model.EventTaskUpdated, Payload: updated})
	return updated, nil
}

// Delete идемпотентен: повторное удаление того же id тоже успех,
// чтобы ретраи клиентов не получали ошибок
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	deleted, err := s.repo.Delete(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if deleted {
		s.emit(userID, model.Event{Name: model.EventTaskDeleted, Payload: taskID})
	}
	return nil
}

func (s *TaskService) emit(ownerID string, event model.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ownerID, event)
	s.logger.Debug("event published", zap.String("event", event.Name), zap.String("owner", ownerID))
}

// normalizePatch сводит два пересекающихся поля к одному: статус -
// единственный источник истины, completed лишь его проекция
func normalizePatch(patch *model.TaskPatch) {
	if patch.Status == nil && patch.Completed != nil {
		status := model.StatusTodo
		if *patch.Completed {
			status = model.StatusCompleted
		}
		patch.Status = &status
	}
	patch.Completed = nil
}
