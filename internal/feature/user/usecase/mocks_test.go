package usecase

import (
	"context"
	"slices"
	"sync"

	"social_backend/internal/feature/user/domain/entity"
)

// memoryUserRepository is an in-memory UserRepository with set semantics.
// Err hooks let a test fail a single call.
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User

	// AddToSetErr is consulted before each AddToSet call.
	AddToSetErr func(id string, field entity.SetField, value string) error
	// RemoveFromSetErr is consulted before each RemoveFromSet call.
	RemoveFromSetErr func(id string, field entity.SetField, value string) error
	// UpdateErr is returned by Update when set.
	UpdateErr error
}

func newMemoryUserRepository(users ...*entity.User) *memoryUserRepository {
	r := &memoryUserRepository{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = clone(u)
	}
	return r
}

func clone(u *entity.User) *entity.User {
	c := *u
	c.Following = slices.Clone(u.Following)
	c.Followers = slices.Clone(u.Followers)
	return &c
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrEmailAlreadyExists
		}
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return clone(u), nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	return r.FindAllExcept(ctx, nil)
}

func (r *memoryUserRepository) FindAllExcept(ctx context.Context, ids []string) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.User{}
	for id, u := range r.users {
		if slices.Contains(ids, id) {
			continue
		}
		out = append(out, clone(u))
	}
	return out, nil
}

func (r *memoryUserRepository) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	if r.UpdateErr != nil {
		return nil, r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	patch.Apply(u)
	return clone(u), nil
}

func (r *memoryUserRepository) Delete(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	delete(r.users, id)
	return u, nil
}

func (r *memoryUserRepository) set(u *entity.User, field entity.SetField) *[]string {
	if field == entity.FieldFollowing {
		return &u.Following
	}
	return &u.Followers
}

func (r *memoryUserRepository) AddToSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error) {
	if r.AddToSetErr != nil {
		if err := r.AddToSetErr(id, field, value); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	s := r.set(u, field)
	if !slices.Contains(*s, value) {
		*s = append(*s, value)
	}
	return clone(u), nil
}

func (r *memoryUserRepository) RemoveFromSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error) {
	if r.RemoveFromSetErr != nil {
		if err := r.RemoveFromSetErr(id, field, value); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	s := r.set(u, field)
	*s = slices.DeleteFunc(*s, func(v string) bool { return v == value })
	return clone(u), nil
}

// mockEventPublisher records published events.
type mockEventPublisher struct {
	mu     sync.Mutex
	events []string
	// PublishFunc overrides the default success behavior.
	PublishFunc func(ctx context.Context, event string, payload any) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, event string, payload any) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event, payload)
	}
	return nil
}

// mockGraphMetrics records observed outcomes.
type mockGraphMetrics struct {
	outcomes []string
}

func (m *mockGraphMetrics) ObserveGraphOp(op, outcome string) {
	m.outcomes = append(m.outcomes, op+":"+outcome)
}

// mockImageResizer is a mock implementation of ImageResizer.
type mockImageResizer struct {
	ResizeFunc func(data []byte, format string, width int) ([]byte, error)
}

func (m *mockImageResizer) Resize(data []byte, format string, width int) ([]byte, error) {
	if m.ResizeFunc != nil {
		return m.ResizeFunc(data, format, width)
	}
	return data, nil
}

// mockAvatarStore is a mock implementation of AvatarStore.
type mockAvatarStore struct {
	SaveFunc func(ctx context.Context, path string, data []byte, contentType string) error
	saved    []string
}

func (m *mockAvatarStore) Save(ctx context.Context, path string, data []byte, contentType string) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, path, data, contentType); err != nil {
			return err
		}
	}
	m.saved = append(m.saved, path)
	return nil
}

// mockAvatarProcessor is a mock implementation of AvatarProcessor.
type mockAvatarProcessor struct {
	ProcessFunc func(ctx context.Context, username string, upload *AvatarUpload) (string, error)
	calls       int
}

func (m *mockAvatarProcessor) Process(ctx context.Context, username string, upload *AvatarUpload) (string, error) {
	m.calls++
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, username, upload)
	}
	return "static/uploads/avatars/" + username + "-1.png", nil
}
