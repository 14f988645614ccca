package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"auctionhouse/internal/auctionerrors"
	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"
	"auctionhouse/utils"
)

const (
	tokenIssuer   = "auctionhouse"
	tokenAudience = "auctionhouse-users"
)

// TokenPayload is what a verified session token asserts about the caller.
type TokenPayload struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// sessionClaims is the JWT claim set carried by the auth cookie.
type sessionClaims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and session-token verification.
type AuthService struct {
	store    repository.UserStore
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new AuthService instance
func NewAuthService(store repository.UserStore, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register creates a user account with role "user" and returns it together
// with a fresh session token.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (models.User, string, error) {
	if name == "" || email == "" || phone == "" || password == "" {
		return models.User{}, "", fmt.Errorf("service: %w - name, email, phone and password are required", auctionerrors.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("service: failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       utils.GenerateID(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return models.User{}, "", fmt.Errorf("service: failed to create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and returns the user with a fresh session
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	if email == "" || password == "" {
		return models.User{}, "", fmt.Errorf("service: %w - email and password are required", auctionerrors.ErrInvalidCredentials)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return models.User{}, "", fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
		}
		return models.User{}, "", fmt.Errorf("service: failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, "", fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// VerifyToken parses and validates a session token, returning its payload.
func (s *AuthService) VerifyToken(token string) (TokenPayload, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("service: %w: %v", auctionerrors.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" || claims.Email == "" {
		return TokenPayload{}, fmt.Errorf("service: %w - malformed token payload", auctionerrors.ErrUnauthorized)
	}

	return TokenPayload{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// TokenTTL exposes the session lifetime for cookie max-age.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *AuthService) issueToken(user models.User) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("service: failed to sign token: %w", err)
	}
	return token, nil
}
