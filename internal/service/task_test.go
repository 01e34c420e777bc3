package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
	"github.com/BuzzLyutic/taskflow-api/internal/repo"
)

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (model.Task, error) {
	args := m.Called(ctx, userID, taskID, patch)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, userID, taskID string) (bool, error) {
	args := m.Called(ctx, userID, taskID)
	return args.Bool(0), args.Error(1)
}

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	events []model.Event
	owners []string
}

func (p *recordingPublisher) Publish(ownerID string, event model.Event) {
	p.owners = append(p.owners, ownerID)
	p.events = append(p.events, event)
}

func TestTaskService_Create(t *testing.T) {
	t.Run("owner comes from context, not payload", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
			return task.UserID == "owner-1" && task.Status == model.StatusTodo && task.Priority == model.PriorityMedium
		})).Return(model.Task{ID: "t1", UserID: "owner-1", Title: "Buy milk"}, nil)

		pub := &recordingPublisher{}
		service := NewTaskService(mockRepo, pub, zap.NewNop())

		created, err := service.Create(context.Background(), "owner-1", model.Task{
			Title:  "Buy milk",
			UserID: "attacker-controlled", // должен быть перезаписан
		})

		require.NoError(t, err)
		assert.Equal(t, "t1", created.ID)

		require.Len(t, pub.events, 1)
		assert.Equal(t, model.EventTaskCreated, pub.events[0].Name)
		assert.Equal(t, "owner-1", pub.owners[0])
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty title", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		pub := &recordingPublisher{}
		service := NewTaskService(mockRepo, pub, zap.NewNop())

		_, err := service.Create(context.Background(), "owner-1", model.Task{Title: "   "})

		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, pub.events)
	})

	t.Run("completed flag maps to status", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
			return task.Status == model.StatusCompleted && task.CompletedAt != nil
		})).Return(model.Task{ID: "t1", Status: model.StatusCompleted}, nil)

		service := NewTaskService(mockRepo, &recordingPublisher{}, zap.NewNop())

		_, err := service.Create(context.Background(), "owner-1", model.Task{
			Title:     "Done already",
			Completed: true,
		})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("nil publisher is fine", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(model.Task{ID: "t1"}, nil)

		service := NewTaskService(mockRepo, nil, zap.NewNop())

		_, err := service.Create(context.Background(), "owner-1", model.Task{Title: "No hub"})
		require.NoError(t, err)
	})
}

func TestTaskService_Update(t *testing.T) {
	t.Run("not found surfaces, no event", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Update", mock.Anything, "owner-1", "missing", mock.Anything).
			Return(model.Task{}, repo.ErrorNotFound)

		pub := &recordingPublisher{}
		service := NewTaskService(mockRepo, pub, zap.NewNop())

		_, err := service.Update(context.Background(), "owner-1", "missing", model.TaskPatch{})

		assert.ErrorIs(t, err, repo.ErrorNotFound)
		assert.Empty(t, pub.events)
	})

	t.Run("completed normalized to status", func(t *testing.T) {
		completed := true
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Update", mock.Anything, "owner-1", "t1", mock.MatchedBy(func(p model.TaskPatch) bool {
			return p.Completed == nil && p.Status != nil && *p.Status == model.StatusCompleted
		})).Return(model.Task{ID: "t1", Status: model.StatusCompleted, Completed: true}, nil)

		pub := &recordingPublisher{}
		service := NewTaskService(mockRepo, pub, zap.NewNop())

		updated, err := service.Update(context.Background(), "owner-1", "t1", model.TaskPatch{Completed: &completed})

		require.NoError(t, err)
		assert.True(t, updated.Completed)

		require.Len(t, pub.events, 1)
		assert.Equal(t, model.EventTaskUpdated, pub.events[0].Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("explicit status wins over completed", func(t *testing.T) {
		completed := true
		status := model.StatusInProgress
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Update", mock.Anything, "owner-1", "t1", mock.MatchedBy(func(p model.TaskPatch) bool {
			return p.Completed == nil && p.Status != nil && *p.Status == model.StatusInProgress
		})).Return(model.Task{ID: "t1", Status: model.StatusInProgress}, nil)

		service := NewTaskService(mockRepo, &recordingPublisher{}, zap.NewNop())

		_, err := service.Update(context.Background(), "owner-1", "t1", model.TaskPatch{
			Completed: &completed,
			Status:    &status,
		})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestTaskService_Delete(t *testing.T) {
	t.Run("existing row emits event", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, "owner-1", "t1").Return(true, nil)

		pub := &recordingPublisher{}
		service := NewTaskService(mockRepo, pub, zap.NewNop())

		require.NoError(t, service.Delete(context.Background(), "owner-1", "t1"))

		require.Len(t, pub.events, 1)
		assert.Equal(t, model.EventTaskDeleted, pub.events[0].Name)
		assert.Equal(t, "t1", pub.events[0].Payload)
	})

	t.Run("missing row still succeeds, no event", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, "owner-1", "gone").Return(false, nil)

		pub := &recordingPublisher{}
		service := NewTaskService(mockRepo, pub, zap.NewNop())

		require.NoError(t, service.Delete(context.Background(), "owner-1", "gone"))
		assert.Empty(t, pub.events)
	})
}

func TestTaskService_List(t *testing.T) {
	status := "todo"
	filter := model.TaskFilter{Status: &status}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, "owner-1", filter).Return([]model.Task{
		{ID: "t1", Status: "todo"},
	}, nil)

	service := NewTaskService(mockRepo, &recordingPublisher{}, zap.NewNop())
	tasks, err := service.List(context.Background(), "owner-1", filter)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
	mockRepo.AssertExpectations(t)
}
