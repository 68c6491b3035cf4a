package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dan9191/bankshot/internal/models"
)

// Memory is an in-process Users implementation for local development
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

// CreateUser stores a copy of user
func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	email := normalizeEmail(user.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[email]; exists {
		return ErrDuplicateEmail
	}
	user.CreatedAt = time.Now()
	cp := *user
	cp.Email = email
	m.byID[cp.ID] = &cp
	m.byEmail[email] = cp.ID
	return nil
}

// FindUserByEmail retrieves a user by email
func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

// FindUserByID retrieves a user by ID
func (m *Memory) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdatePassword replaces a user's password hash
func (m *Memory) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}
