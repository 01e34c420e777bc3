// Package client - программное зеркало сессии: держит локальные кэши
// задач и категорий, ходит в REST и примиряет события из вебсокета.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	user    model.PublicUser

	mu         sync.RWMutex
	tasks      []model.Task
	categories []model.Category

	conn     *websocket.Conn
	onChange func()
}

// New принимает базовый адрес API, например http://localhost:5000/api
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// OnChange вызывается после каждой мутации кэша (хук перерисовки).
// Выставлять до Connect.
func (c *Client) OnChange(fn func()) {
	c.onChange = fn
}

type authResponse struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register",
		map[string]string{"name": name, "email": email, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	c.user = resp.User
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	c.user = resp.User
	return nil
}

func (c *Client) User() model.PublicUser {
	return c.user
}

// Connect подтягивает полное состояние и подписывается на события.
// Авторитетный источник при подключении - всегда list, пропущенные
// до подключения события никто не доигрывает.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	wsURL, err := c.wsURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	c.conn = conn

	go c.listen(conn)
	return nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Refresh полностью перечитывает кэши с сервера
func (c *Client) Refresh(ctx context.Context) error {
	var tasksResp struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasksResp); err != nil {
		return err
	}

	var categoriesResp struct {
		Categories []model.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categoriesResp); err != nil {
		return err
	}

	c.mu.Lock()
	c.tasks = tasksResp.Tasks
	c.categories = categoriesResp.Categories
	c.mu.Unlock()

	c.notify()
	return nil
}

// Tasks возвращает снимок локального кэша задач
func (c *Client) Tasks() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *Client) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Client) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	var resp struct {
		Task model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", t, &resp); err != nil {
		return model.Task{}, err
	}
	c.upsertTask(resp.Task)
	return resp.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var resp struct {
		Task model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, patch, &resp); err != nil {
		return model.Task{}, err
	}
	c.upsertTask(resp.Task)
	return resp.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, &resp); err != nil {
		return err
	}
	c.removeTask(id)
	return nil
}

func (c *Client) CreateCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	var resp struct {
		Category model.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPost, "/categories", cat, &resp); err != nil {
		return model.Category{}, err
	}

	c.mu.Lock()
	c.categories = append(c.categories, resp.Category)
	c.mu.Unlock()
	c.notify()
	return resp.Category, nil
}

func (c *Client) Analytics(ctx context.Context) (model.Analytics, error) {
	var resp struct {
		Analytics model.Analytics `json:"analytics"`
	}
	err := c.do(ctx, http.MethodGet, "/analytics", nil, &resp)
	return resp.Analytics, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error (%d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path += "/ws"
	u.RawQuery = "token=" + url.QueryEscape(c.token)
	return u.String(), nil
}

func (c *Client) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
