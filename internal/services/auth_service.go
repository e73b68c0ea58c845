// server/internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/auth"
	"coffee-os-api-server/internal/database"
	"coffee-os-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type LoginResult struct {
	User  models.UserSummary `json:"user"`
	Token string             `json:"token"`
}

type AuthService struct {
	users    *mongo.Collection
	tokens   *auth.TokenManager
	denylist auth.Denylist
	now      func() time.Time
}

func NewAuthService(db *mongo.Database, tokens *auth.TokenManager, denylist auth.Denylist) *AuthService {
	return &AuthService{
		users:    db.Collection(database.Users),
		tokens:   tokens,
		denylist: denylist,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the default role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	count, err := s.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, apperror.ErrEmailInUse
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user := &models.User{
		Email:     email,
		Username:  strings.TrimSpace(in.Username),
		FullName:  strings.TrimSpace(in.FullName),
		Password:  hashed,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	user.Password = ""
	return user, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{User: user.Summary(), Token: token}, nil
}

// Verify parses the token and rejects revoked ones.
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.JWTClaims, error) {
	claims, err := s.tokens.ParseJWT(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	if claims.ID == "" {
		return claims, nil
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// Fail closed when the denylist is unreachable.
		zap.L().Error("denylist lookup failed", zap.Error(err))
		return nil, apperror.ErrInvalidToken
	}
	if revoked {
		return nil, apperror.ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.JWTClaims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
