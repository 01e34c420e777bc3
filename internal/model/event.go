package model

// Имена событий совпадают с тем, что клиент слушает по вебсокету
const (
	EventTaskCreated = "task-created"
	EventTaskUpdated = "task-updated"
	EventTaskDeleted = "task-deleted"
)

// Event - эфемерное событие изменения, никуда не персистится.
// Payload: полная задача для created/updated, голый id для deleted.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}
