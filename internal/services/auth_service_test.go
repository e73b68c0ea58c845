package services

import (
	"context"
	"testing"
	"time"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/auth"
	"coffee-os-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const usersNS = "test.users"

func newAuthService(mt *mtest.T) *AuthService {
	return NewAuthService(mt.DB, auth.NewTokenManager("test-secret", time.Hour), auth.NewMemoryDenylist())
}

func storedUser(t *testing.T, password string) models.User {
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return models.User{
		ID:       primitive.NewObjectID(),
		Email:    "ana@coffee.test",
		Username: "ana",
		FullName: "Ana Barista",
		Password: hash,
		Role:     models.RoleUser,
	}
}

func TestAuthServiceRegister(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("creates user", func(mt *mtest.T) {
		svc := newAuthService(mt)
		mt.AddMockResponses(count(usersNS, 0), mtest.CreateSuccessResponse())

		user, err := svc.Register(ctx, RegisterInput{Email: " Ana@Coffee.TEST ", Password: "secret1", Username: "ana"})
		require.NoError(t, err)
		assert.Equal(t, "ana@coffee.test", user.Email)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.Empty(t, user.Password)
		assert.False(t, user.ID.IsZero())

		mt.GetStartedEvent() // email check
		doc := mt.GetStartedEvent().Command.Lookup("documents").Array().Index(0).Value().Document()
		stored := doc.Lookup("password").StringValue()
		assert.NotEqual(t, "secret1", stored)
		assert.True(t, auth.CheckPasswordHash("secret1", stored))
	})

	mt.Run("email in use", func(mt *mtest.T) {
		svc := newAuthService(mt)
		mt.AddMockResponses(count(usersNS, 1))

		_, err := svc.Register(ctx, RegisterInput{Email: "ana@coffee.test", Password: "secret1"})
		assert.Equal(t, apperror.ErrEmailInUse, err)
	})

	mt.Run("unique index race", func(mt *mtest.T) {
		svc := newAuthService(mt)
		mt.AddMockResponses(count(usersNS, 0), duplicateKey())

		_, err := svc.Register(ctx, RegisterInput{Email: "ana@coffee.test", Password: "secret1"})
		assert.Equal(t, apperror.ErrEmailInUse, err)
	})
}

func TestAuthServiceLogin(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("issues token", func(mt *mtest.T) {
		svc := newAuthService(mt)
		user := storedUser(t, "secret1")
		mt.AddMockResponses(cursor(usersNS, toDoc(t, user)))

		res, err := svc.Login(ctx, "ANA@coffee.test", "secret1")
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), res.User.ID)
		assert.Equal(t, "Ana Barista", res.User.FullName)

		claims, err := svc.Verify(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)
		assert.Equal(t, models.RoleUser, claims.Role)

		evt := mt.GetStartedEvent()
		assert.Equal(t, "ana@coffee.test", evt.Command.Lookup("filter", "email").StringValue())
	})

	mt.Run("wrong password", func(mt *mtest.T) {
		svc := newAuthService(mt)
		mt.AddMockResponses(cursor(usersNS, toDoc(t, storedUser(t, "secret1"))))

		_, err := svc.Login(ctx, "ana@coffee.test", "nope")
		assert.Equal(t, apperror.ErrInvalidCredentials, err)
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		svc := newAuthService(mt)
		mt.AddMockResponses(cursor(usersNS))

		_, err := svc.Login(ctx, "ghost@coffee.test", "secret1")
		assert.Equal(t, apperror.ErrInvalidCredentials, err)
	})
}

func TestAuthServiceLogout(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("revoked token no longer verifies", func(mt *mtest.T) {
		svc := newAuthService(mt)
		token, err := svc.tokens.GenerateJWT(primitive.NewObjectID().Hex(), "ana@coffee.test", models.RoleUser)
		require.NoError(t, err)

		claims, err := svc.Verify(ctx, token)
		require.NoError(t, err)
		require.NoError(t, svc.Logout(ctx, claims))

		_, err = svc.Verify(ctx, token)
		assert.Equal(t, apperror.ErrInvalidToken, err)
	})

	mt.Run("garbage token", func(mt *mtest.T) {
		svc := newAuthService(mt)
		_, err := svc.Verify(ctx, "not-a-jwt")
		assert.Equal(t, apperror.ErrInvalidToken, err)
	})
}

func TestUserService(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("list hides password", func(mt *mtest.T) {
		svc := NewUserService(mt.DB)
		user := storedUser(t, "secret1")
		user.Password = ""
		mt.AddMockResponses(cursor(usersNS, toDoc(t, user)))

		users, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)

		evt := mt.GetStartedEvent()
		assert.Equal(t, int32(0), evt.Command.Lookup("projection", "password").Int32())
	})

	mt.Run("get missing", func(mt *mtest.T) {
		svc := NewUserService(mt.DB)
		mt.AddMockResponses(cursor(usersNS))

		_, err := svc.Get(ctx, primitive.NewObjectID().Hex())
		assert.Equal(t, apperror.ErrUserNotFound, err)
	})
}
