// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/localcache"
	"github.com/olegiv/metalmaster-go/internal/model"
)

// MinPasswordLength is the minimum accepted password length at
// registration.
const MinPasswordLength = 6

// emailPattern is deliberately permissive: something, an @, something,
// a dot, something. Real validation happens when mail bounces.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is a self-registration submission.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Register creates a new user account and logs it in. Email must be
// unique (case-sensitive match) and syntactically valid; the password
// must be at least MinPasswordLength characters. Self-registered users
// always get the user role.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (model.User, error) {
	if !emailPattern.MatchString(input.Email) {
		return model.User{}, fault.Validation("invalid email address")
	}
	if len(input.Password) < MinPasswordLength {
		return model.User{}, fault.Validation("password must be at least %d characters", MinPasswordLength)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, u := range e.data.Users {
		if u.Email == input.Email {
			return model.User{}, fault.Validation("a user with this email already exists")
		}
	}

	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		phone = "Не указан"
	}

	user := model.User{
		ID:             e.nextID(),
		Name:           strings.TrimSpace(input.Name),
		Email:          input.Email,
		Password:       input.Password,
		Phone:          phone,
		Role:           model.RoleUser,
		DateRegistered: time.Now().UTC(),
	}

	e.data.Users = append(e.data.Users, user)
	if err := e.writeCacheJSON(ctx, localcache.KeyUsers, e.data.Users); err != nil {
		return model.User{}, err
	}

	// Auto-login after registration.
	e.currentUser = &user
	if err := e.persistCurrentUserLocked(ctx); err != nil {
		return model.User{}, err
	}
	e.pushRemote()

	return user, nil
}

// Login matches email and password exactly against the users
// collection, first match wins. The failure is deliberately generic:
// it does not distinguish an unknown email from a wrong password.
func (e *Engine) Login(ctx context.Context, email, password string) (model.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, u := range e.data.Users {
		if u.Email == email && u.Password == password {
			user := u
			e.currentUser = &user
			if err := e.persistCurrentUserLocked(ctx); err != nil {
				return model.User{}, err
			}
			return user, nil
		}
	}
	return model.User{}, fault.Authorization("invalid email or password")
}

// Logout clears the current user locally.
func (e *Engine) Logout(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentUser = nil
	return e.cache.Delete(ctx, localcache.KeyCurrentUser)
}

// CurrentUser returns a copy of the logged-in user, if any.
func (e *Engine) CurrentUser() (model.User, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentUser == nil {
		return model.User{}, false
	}
	return *e.currentUser, true
}

// UpdateProfile lets the logged-in user change their own name and
// phone. Both the users collection and the persisted session copy are
// updated.
func (e *Engine) UpdateProfile(ctx context.Context, name, phone string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, fault.Validation("name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentUser == nil {
		return model.User{}, fault.Authorization("not logged in")
	}

	idx := e.findUserLocked(e.currentUser.ID)
	if idx < 0 {
		return model.User{}, fault.NotFound("user %d", e.currentUser.ID)
	}

	e.data.Users[idx].Name = name
	if phone = strings.TrimSpace(phone); phone != "" {
		e.data.Users[idx].Phone = phone
	}

	updated := e.data.Users[idx]
	e.currentUser = &updated

	if err := e.writeCacheJSON(ctx, localcache.KeyUsers, e.data.Users); err != nil {
		return model.User{}, err
	}
	if err := e.persistCurrentUserLocked(ctx); err != nil {
		return model.User{}, err
	}
	e.pushRemote()

	return updated, nil
}

// UpdateUser is the admin-management surface. The root identity may
// change anyone's name, phone and role; other users may only touch
// their own name and phone. Demoting root is rejected regardless of
// caller.
func (e *Engine) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentUser == nil {
		return model.User{}, fault.Authorization("not logged in")
	}

	idx := e.findUserLocked(id)
	if idx < 0 {
		return model.User{}, fault.NotFound("user %d", id)
	}
	target := &e.data.Users[idx]

	isRoot := e.currentUser.Email == e.rootEmail
	isSelf := e.currentUser.ID == id

	if !isRoot && !isSelf {
		return model.User{}, fault.Authorization("only the root administrator can manage other users")
	}
	if patch.Role != nil {
		if !isRoot {
			return model.User{}, fault.Authorization("only the root administrator can change roles")
		}
		if target.Email == e.rootEmail && *patch.Role != model.RoleAdmin {
			return model.User{}, fault.Authorization("the root administrator cannot be demoted")
		}
		if *patch.Role != model.RoleAdmin && *patch.Role != model.RoleUser {
			return model.User{}, fault.Validation("unknown role %q", *patch.Role)
		}
	}
	// Email and password are not managed through this surface.
	patch.Email = nil
	patch.Password = nil

	patch.Apply(target)
	updated := *target

	if err := e.writeCacheJSON(ctx, localcache.KeyUsers, e.data.Users); err != nil {
		return model.User{}, err
	}
	if isSelf {
		e.currentUser = &updated
		if err := e.persistCurrentUserLocked(ctx); err != nil {
			return model.User{}, err
		}
	}
	e.pushRemote()

	return updated, nil
}

// DeleteUser removes a user. Only the root identity may delete users;
// self-deletion is always rejected and the root user is undeletable by
// any path.
func (e *Engine) DeleteUser(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentUser == nil || e.currentUser.Email != e.rootEmail {
		return fault.Authorization("only the root administrator can delete users")
	}
	if e.currentUser.ID == id {
		return fault.Authorization("you cannot delete yourself")
	}

	idx := e.findUserLocked(id)
	if idx < 0 {
		return fault.NotFound("user %d", id)
	}
	if e.data.Users[idx].Email == e.rootEmail {
		return fault.Authorization("the root administrator cannot be deleted")
	}

	e.data.Users = append(e.data.Users[:idx], e.data.Users[idx+1:]...)
	if err := e.writeCacheJSON(ctx, localcache.KeyUsers, e.data.Users); err != nil {
		return err
	}
	e.pushRemote()

	return nil
}

// Users returns a copy of the users collection.
func (e *Engine) Users() []model.User {
	e.mu.Lock()
	defer e.mu.Unlock()

	users := make([]model.User, len(e.data.Users))
	copy(users, e.data.Users)
	return users
}

func (e *Engine) findUserLocked(id int64) int {
	for i := range e.data.Users {
		if e.data.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) isAdmin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentUser != nil && e.currentUser.IsAdmin()
}

func (e *Engine) persistCurrentUserLocked(ctx context.Context) error {
	if e.currentUser == nil {
		return e.cache.Delete(ctx, localcache.KeyCurrentUser)
	}
	return e.writeCacheJSON(ctx, localcache.KeyCurrentUser, e.currentUser)
}
