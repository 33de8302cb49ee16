// Package memory implementa core.Repository con mapas en proceso.
// Pensado para tests y para levantar el servicio sin Postgres.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/assetweb/internal/store/core"
)

type Store struct {
	mu        sync.Mutex
	users     map[string]*core.User         // id -> user
	byEmail   map[string]string             // email -> id
	tokens    map[string]*core.RefreshToken // token_hash -> token
	companies map[string]*core.Company      // id -> company
}

func New() *Store {
	return &Store{
		users:     make(map[string]*core.User),
		byEmail:   make(map[string]string),
		tokens:    make(map[string]*core.RefreshToken),
		companies: make(map[string]*core.Company),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func cloneUser(u *core.User) *core.User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.PasswordSalt = append([]byte(nil), u.PasswordSalt...)
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

func cloneToken(rt *core.RefreshToken) *core.RefreshToken {
	c := *rt
	if rt.ReplacedBy != nil {
		v := *rt.ReplacedBy
		c.ReplacedBy = &v
	}
	if rt.ReasonRevoked != nil {
		v := *rt.ReasonRevoked
		c.ReasonRevoked = &v
	}
	return &c
}

// ====================== USERS ======================

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return core.ErrConflict
	}
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = cloneUser(u)
	s.byEmail[email] = u.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) UpdateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now
	u.Email = cur.Email // el email no se edita por acá
	u.CreatedAt = cur.CreatedAt
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *Store) ConfirmUserEmail(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	if u.EmailConfirmed {
		return core.ErrConflict
	}
	u.EmailConfirmed = true
	now := time.Now().UTC()
	u.UpdatedAt = &now
	return nil
}

// ====================== REFRESH TOKENS ======================

func (s *Store) CreateRefreshToken(_ context.Context, rt *core.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[rt.TokenHash]; ok {
		return core.ErrConflict
	}
	rt.ID = uuid.NewString()
	rt.CreatedAt = time.Now().UTC()
	s.tokens[rt.TokenHash] = cloneToken(rt)
	return nil
}

func (s *Store) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*core.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[tokenHash]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneToken(rt), nil
}

func (s *Store) RotateRefreshToken(_ context.Context, oldHash string, successor *core.RefreshToken, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.tokens[oldHash]
	if !ok {
		return core.ErrNotFound
	}
	// mismo CAS que pg: solo rota el que encuentra el token vivo
	if old.Revoked || !now.Before(old.ExpiresAt) {
		return core.ErrTokenRevoked
	}

	successor.ID = uuid.NewString()
	successor.CreatedAt = now.UTC()
	s.tokens[successor.TokenHash] = cloneToken(successor)

	reason := "Replaced by new token"
	old.Revoked = true
	old.ReasonRevoked = &reason
	old.ReplacedBy = &successor.ID
	return nil
}

func (s *Store) RevokeRefreshToken(_ context.Context, tokenHash, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[tokenHash]
	if !ok || rt.Revoked {
		return nil
	}
	rt.Revoked = true
	rt.ReasonRevoked = &reason
	return nil
}

// ====================== COMPANIES ======================

// AddCompany existe para seeding en tests y dev.
func (s *Store) AddCompany(ownerID, name string) *core.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &core.Company{ID: uuid.NewString(), OwnerID: ownerID, Name: name, CreatedAt: time.Now().UTC()}
	s.companies[c.ID] = c
	return c
}

func (s *Store) UserHasCompany(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.OwnerID == userID {
			return true, nil
		}
	}
	return false, nil
}
