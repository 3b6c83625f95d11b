package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tienda-pos/tienda/internal/shared"
)

type memoryRepo struct {
	users map[string]User
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (User, error) {
	u, ok := r.users[email]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func newRepoWithUser(t *testing.T, email, password string) *memoryRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &memoryRepo{users: map[string]User{
		email: {ID: 1, Name: "Ana", Email: email, PasswordHash: string(hash)},
	}}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "ana@tienda.test", "secret123"))

	user, err := svc.Authenticate(context.Background(), "ana@tienda.test", "secret123")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "ana@tienda.test", "secret123"))

	user, err := svc.Authenticate(context.Background(), "  ANA@tienda.test ", "secret123")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "ana@tienda.test", "secret123"))

	_, err := svc.Authenticate(context.Background(), "ana@tienda.test", "nope")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(&memoryRepo{users: map[string]User{}})

	_, err := svc.Authenticate(context.Background(), "ghost@tienda.test", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
