package services

import (
	"context"
	"testing"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.core.Register(ctx, RegisterInput{
		Name: "Tess Teacher", Email: "Tess@Example.com", Password: "secret1",
		Role: "teacher", Subjects: []string{"Chemistry", "Biology", "Chemistry"},
	})
	require.NoError(t, err)
	require.Equal(t, "tess@example.com", u.Email)
	require.Equal(t, models.RoleTeacher, u.Role)
	require.NotEqual(t, "secret1", u.Password)
	require.Len(t, u.Subjects, 2)

	_, err = e.core.Register(ctx, RegisterInput{Name: "Dup", Email: "tess@example.com", Password: "secret2", Role: "student"})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := e.core.Login(ctx, LoginInput{Email: "TESS@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = e.core.Login(ctx, LoginInput{Email: "tess@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.core.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := e.core.Me(ctx, authz.Identity{ID: u.ID, Role: u.Role})
	require.NoError(t, err)
	require.Len(t, me.Subjects, 2)
}

func TestRegisterRejects(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"admin_role", RegisterInput{Name: "X", Email: "x@example.com", Password: "secret1", Role: "super_admin"}},
		{"short_password", RegisterInput{Name: "X", Email: "x@example.com", Password: "123", Role: "student"}},
		{"bad_email", RegisterInput{Name: "X", Email: "not-an-email", Password: "secret1", Role: "student"}},
		{"missing_name", RegisterInput{Email: "x@example.com", Password: "secret1", Role: "student"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.core.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
