package services

import (
	"context"
	"strings"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/store"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterInput struct {
	Name     string   `json:"name" validate:"required,max=255"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     string   `json:"role" validate:"required,oneof=student teacher"`
	Subjects []string `json:"subjects" validate:"dive,required,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Core) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, unexpected(err)
	}

	u := &models.User{
		Name:     in.Name,
		Email:    strings.ToLower(in.Email),
		Password: string(hashed),
		Role:     models.Role(in.Role),
	}
	if u.Role == models.RoleTeacher {
		seen := map[string]bool{}
		for _, s := range in.Subjects {
			if seen[s] {
				continue
			}
			seen[s] = true
			u.Subjects = append(u.Subjects, models.TeacherSubject{Subject: s})
		}
	}

	err = c.store.CreateUser(ctx, u)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperrors.Conflict("Email is already registered")
	case err != nil:
		return nil, unexpected(err)
	}
	return u, nil
}

func (c *Core) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	u, err := c.store.FindUserByEmail(ctx, strings.ToLower(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, unexpected(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (c *Core) Me(ctx context.Context, id authz.Identity) (*models.User, error) {
	u, err := c.store.FindUser(ctx, id.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}
