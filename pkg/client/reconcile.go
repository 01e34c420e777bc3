package client

import (
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
)

type wireEvent struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (c *Client) listen(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event wireEvent
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}
		c.apply(event)
	}
}

// apply примиряет событие с локальным кэшем. Дедупликация по id задачи:
// свое же эхо от task-created ложится поверх уже вставленной прямым
// ответом задачи, в каком бы порядке они ни пришли.
func (c *Client) apply(event wireEvent) {
	switch event.Name {
	case model.EventTaskCreated:
		var task model.Task
		if err := json.Unmarshal(event.Payload, &task); err != nil {
			return
		}
		c.upsertTask(task)
	case model.EventTaskUpdated:
		var task model.Task
		if err := json.Unmarshal(event.Payload, &task); err != nil {
			return
		}
		c.replaceTask(task)
	case model.EventTaskDeleted:
		var id string
		if err := json.Unmarshal(event.Payload, &id); err != nil {
			return
		}
		c.removeTask(id)
	}
}

// upsertTask применяет задачу ровно один раз: замена по совпавшему id,
// иначе вставка
func (c *Client) upsertTask(task model.Task) {
	c.mu.Lock()
	found := false
	for i := range c.tasks {
		if c.tasks[i].ID == task.ID {
			c.tasks[i] = task
			found = true
			break
		}
	}
	if !found {
		c.tasks = append(c.tasks, task)
	}
	c.mu.Unlock()

	c.notify()
}

// replaceTask заменяет закэшированную задачу, незнакомый id игнорируется
func (c *Client) replaceTask(task model.Task) {
	c.mu.Lock()
	changed := false
	for i := range c.tasks {
		if c.tasks[i].ID == task.ID {
			c.tasks[i] = task
			changed = true
			break
		}
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// removeTask идемпотентен, незнакомый id просто игнорируется
func (c *Client) removeTask(id string) {
	c.mu.Lock()
	changed := false
	out := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID == id {
			changed = true
			continue
		}
		out = append(out, t)
	}
	c.tasks = out
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}
