package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*models.User{}}
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return repo.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) SetRefreshToken(_ context.Context, id string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	if token == nil {
		u.RefreshToken = nil
		return nil
	}
	v := *token
	u.RefreshToken = &v
	return nil
}

func (m *memUserStore) SwapRefreshToken(_ context.Context, id, expected, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != expected {
		return repo.ErrNotFound
	}
	u.RefreshToken = &next
	return nil
}

func (m *memUserStore) stored(id string) *string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u.RefreshToken
	}
	return nil
}

type memProductStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
	clock    time.Time
	writes   int
	failWith error
}

func newMemProductStore() *memProductStore {
	return &memProductStore{
		products: map[string]*models.Product{},
		clock:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memProductStore) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.writes++
	m.clock = m.clock.Add(time.Second)
	p.ID = uuid.NewString()
	p.CreatedAt = m.clock
	p.UpdatedAt = m.clock
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductStore) Update(_ context.Context, id string, patch models.ProductPatch, now time.Time) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	m.writes++
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

func (m *memProductStore) Count(_ context.Context, c models.ProductCriteria) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	return int64(len(m.match(c))), nil
}

func (m *memProductStore) Find(_ context.Context, c models.ProductCriteria, page models.PageRequest) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := page.SortBy.Column(); !ok {
		return nil, errors.New("unsupported sort field")
	}

	items := m.match(c)
	sort.SliceStable(items, func(i, j int) bool {
		if page.Desc {
			return lessBy(page.SortBy, items[j], items[i])
		}
		return lessBy(page.SortBy, items[i], items[j])
	})

	if page.Offset >= len(items) {
		return []models.Product{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end], nil
}

func (m *memProductStore) match(c models.ProductCriteria) []models.Product {
	out := []models.Product{}
	term := strings.ToLower(c.Term)
	for _, p := range m.products {
		switch {
		case c.ActiveOnly && !p.IsActive:
		case c.Category != nil && p.Category != *c.Category:
		case c.MinPrice != nil && p.Price < *c.MinPrice:
		case c.MaxPrice != nil && p.Price > *c.MaxPrice:
		case c.MinQuantity != nil && p.Quantity < *c.MinQuantity:
		case c.MaxQuantity != nil && p.Quantity > *c.MaxQuantity:
		case term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Category), term):
		default:
			out = append(out, *p)
		}
	}
	return out
}

func (m *memProductStore) get(id string) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.products[id]
}

func lessBy(f models.SortField, a, b models.Product) bool {
	switch f {
	case models.SortName:
		return a.Name < b.Name
	case models.SortPrice:
		return a.Price < b.Price
	case models.SortQuantity:
		return a.Quantity < b.Quantity
	case models.SortCategory:
		return a.Category < b.Category
	case models.SortUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]any
	err    error
}

func (r *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, _ := event.(map[string]any)
	cp := map[string]any{"topic": topic}
	for k, v := range m {
		cp[k] = v
	}
	r.events = append(r.events, cp)
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e["type"].(string))
	}
	return out
}
