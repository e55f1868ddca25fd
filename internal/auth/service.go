package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput = errors.New("email, username, and password (min 8 chars) are required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

const issuer = "courtside"

// Service defines the contract for umpire authentication.
type Service interface {
	Register(ctx context.Context, email, username, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (*Claims, error)
}

// Config holds the configuration needed by the auth service.
type Config struct {
	JWTSecret     string
	TokenDuration time.Duration
}

type service struct {
	repo   Repository
	config Config
	now    func() time.Time
}

func NewService(repo Repository, config Config) Service {
	return &service{
		repo:   repo,
		config: config,
		now:    time.Now,
	}
}

// Register creates an umpire account with a bcrypt-hashed password.
func (s *service) Register(ctx context.Context, email, username, password string) (string, error) {
	email, username = strings.TrimSpace(email), strings.TrimSpace(username)
	if email == "" || username == "" || len(password) < 8 {
		return "", ErrInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return "", err
	}

	id, err := s.repo.CreateUmpire(ctx, email, username, string(hashed))
	if err != nil {
		return "", err
	}

	slog.Info("New umpire registered", "umpireID", id)
	return id, nil
}

// Login verifies credentials and returns a signed JWT.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetUmpireByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		// Same error as an unknown email so accounts cannot be enumerated.
		return "", ErrUserNotFound
	}

	return s.generateJWT(u)
}

// Claims defines the payload of an umpire session token.
type Claims struct {
	UmpireID string `json:"uid"`
	Username string `json:"uname"`
	jwt.RegisteredClaims
}

func (s *service) generateJWT(u *Umpire) (string, error) {
	now := s.now()
	claims := &Claims{
		UmpireID: u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		slog.Error("Failed to sign JWT", "error", err)
		return "", err
	}
	return signed, nil
}

// ParseToken validates signature, issuer and expiry and returns the claims.
func (s *service) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
