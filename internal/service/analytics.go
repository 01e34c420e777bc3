package service

import (
	"context"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
	"github.com/BuzzLyutic/taskflow-api/internal/repo"
)

// AnalyticsService - чистая функция от текущего набора задач,
// пересчитывается на каждый вызов, ничего не кэширует
type AnalyticsService struct {
	tasks repo.TaskRepository
}

func NewAnalyticsService(tasks repo.TaskRepository) *AnalyticsService {
	return &AnalyticsService{tasks: tasks}
}

func (s *AnalyticsService) Summarize(ctx context.Context, userID string) (model.Analytics, error) {
	tasks, err := s.tasks.List(ctx, userID, model.TaskFilter{})
	if err != nil {
		return model.Analytics{}, err
	}
	return summarize(tasks), nil
}

func summarize(tasks []model.Task) model.Analytics {
	a := model.Analytics{Total: len(tasks)}

	for _, t := range tasks {
		if t.IsCompleted() {
			a.Completed++
		}

		// Приоритет вне четырех известных значений не попадает
		// ни в одну корзину, но в total все равно учтен
		switch t.Priority {
		case model.PriorityUrgent:
			a.ByPriority.Urgent++
		case model.PriorityHigh:
			a.ByPriority.High++
		case model.PriorityMedium:
			a.ByPriority.Medium++
		case model.PriorityLow:
			a.ByPriority.Low++
		}
	}

	a.Pending = a.Total - a.Completed
	return a
}
