package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type userRepository struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.Wrapf(domain.ErrUserNotFound, "user %s", id)
	}
	return user.Clone(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, domain.Wrapf(domain.ErrUserNotFound, "email %s", email)
	}
	return r.users[id].Clone(), nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	key := normalizeEmail(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[key]; ok {
		return domain.Wrapf(domain.ErrUserExists, "email %s", user.Email)
	}
	if _, ok := r.users[user.ID]; ok {
		return domain.Wrapf(domain.ErrDuplicateID, "user %s", user.ID)
	}
	r.users[user.ID] = user.Clone()
	r.byEmail[key] = user.ID
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[user.ID]
	if !ok {
		return domain.Wrapf(domain.ErrUserNotFound, "user %s", user.ID)
	}
	oldKey, newKey := normalizeEmail(current.Email), normalizeEmail(user.Email)
	if oldKey != newKey {
		if _, taken := r.byEmail[newKey]; taken {
			return domain.Wrapf(domain.ErrUserExists, "email %s", user.Email)
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}
	r.users[user.ID] = user.Clone()
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
