package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	repo "github.com/oksasatya/tiktok-clone-auth/internal/domain/repository"
)

// In-memory doubles for the persistence and messaging ports. They copy on
// read and write so tests observe only what was persisted.

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*entity.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*entity.User{}}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.byID {
		if ex.Email == u.Email || ex.Username == u.Username {
			return repo.ErrConflict
		}
	}
	m.byID[u.ID] = cloneUser(u)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	for id, ex := range m.byID {
		if id != u.ID && (ex.Email == u.Email || ex.Username == u.Username) {
			return repo.ErrConflict
		}
	}
	m.byID[u.ID] = cloneUser(u)
	return nil
}

func (m *memUsers) Search(_ context.Context, q string, limit int) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = strings.ToLower(q)
	out := make([]*entity.User, 0)
	for _, u := range m.byID {
		if len(out) >= limit {
			break
		}
		if strings.Contains(u.Username, q) || strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

type memTokens struct {
	mu      sync.Mutex
	byToken map[string]*entity.RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{byToken: map[string]*entity.RefreshToken{}}
}

func cloneToken(t *entity.RefreshToken) *entity.RefreshToken {
	c := *t
	if t.RevokedAt != nil {
		at := *t.RevokedAt
		c.RevokedAt = &at
	}
	return &c
}

func (m *memTokens) Create(_ context.Context, t *entity.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byToken[t.Token]; ok {
		return repo.ErrConflict
	}
	m.byToken[t.Token] = cloneToken(t)
	return nil
}

func (m *memTokens) GetByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byToken[token]; ok {
		return cloneToken(t), nil
	}
	return nil, repo.ErrNotFound
}

func (m *memTokens) Rotate(_ context.Context, old, replacement *entity.RefreshToken, revokedByIP string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byToken[old.Token]
	if !ok {
		return repo.ErrNotFound
	}
	if !stored.Revoke(replacement.Token, revokedByIP) {
		return repo.ErrConflict
	}
	m.byToken[replacement.Token] = cloneToken(replacement)
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID, revokedByIP string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.byToken {
		if t.UserID == userID && t.Revoke("", revokedByIP) {
			n++
		}
	}
	return n, nil
}

func (m *memTokens) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.byToken {
		if t.IsExpired() {
			delete(m.byToken, k)
			n++
		}
	}
	return n, nil
}

func (m *memTokens) activeFor(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.byToken {
		if t.UserID == userID && t.IsActive() {
			n++
		}
	}
	return n
}

type memCodes struct {
	mu      sync.Mutex
	byEmail map[string]*entity.EmailVerification
}

func newMemCodes() *memCodes {
	return &memCodes{byEmail: map[string]*entity.EmailVerification{}}
}

func (m *memCodes) GetByEmail(_ context.Context, email string) (*entity.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.byEmail[email]; ok {
		c := *v
		return &c, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memCodes) Save(_ context.Context, v *entity.EmailVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *v
	m.byEmail[v.Email] = &c
	return nil
}

func (m *memCodes) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byEmail, email)
	return nil
}

type memGuard struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
}

func newMemGuard(max int) *memGuard {
	return &memGuard{failures: map[string]int{}, max: max}
}

func (g *memGuard) Locked(_ context.Context, email string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures[email] >= g.max, nil
}

func (g *memGuard) RecordFailure(_ context.Context, email string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[email]++
	return g.failures[email] >= g.max, nil
}

func (g *memGuard) Reset(_ context.Context, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, email)
	return nil
}

type memConfirm struct {
	mu      sync.Mutex
	byToken map[string]string
}

func newMemConfirm() *memConfirm {
	return &memConfirm{byToken: map[string]string{}}
}

func (c *memConfirm) Put(_ context.Context, token, userID string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byToken[token] = userID
	return nil
}

func (c *memConfirm) Get(_ context.Context, token string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	uid, ok := c.byToken[token]
	return uid, ok, nil
}

func (c *memConfirm) Del(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byToken, token)
	return nil
}

// anyToken returns one stored token, or "" when none is held.
func (c *memConfirm) anyToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for t := range c.byToken {
		return t
	}
	return ""
}

func (c *memConfirm) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byToken)
}

type memIndexer struct {
	mu      sync.Mutex
	indexed []string
}

func (i *memIndexer) IndexUser(_ context.Context, u *entity.User) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed = append(i.indexed, u.ID)
}

func (i *memIndexer) indexedIDs() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]string, len(i.indexed))
	copy(out, i.indexed)
	return out
}

type memPublisher struct {
	mu       sync.Mutex
	messages []any
	err      error
}

func (p *memPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, body)
	return nil
}

func (p *memPublisher) eventNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		if env, ok := m.(map[string]any); ok {
			if name, ok := env["event"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}
