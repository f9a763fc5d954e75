package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

var authTracer = otel.Tracer("service.auth")

// AuthService issues and verifies access tokens. The shop is single-tenant:
// one shared PIN, names are display labels on the token, not identities.
type AuthService struct {
	pinHash   string
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

func NewAuthService(pinHash, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		pinHash:   pinHash,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// Login verifies the shared PIN and issues a signed access token.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	_, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if s.pinHash == "" {
		return nil, &domain.ErrUnauthorized{Message: "login is not configured"}
	}
	if req.PIN == "" {
		return nil, &domain.ErrValidation{Field: "pin", Message: "required"}
	}
	name := req.Name
	if name == "" {
		name = "shop"
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.pinHash), []byte(req.PIN)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("name", name))
		return nil, &domain.ErrUnauthorized{Message: "invalid pin"}
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   name,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login", zap.String("name", name))
	return &domain.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		Name:        name,
	}, nil
}

// VerifyToken validates an access token and returns the subject name.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &domain.ErrUnauthorized{Message: "unexpected signing method"}
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", &domain.ErrUnauthorized{Message: "invalid token claims"}
	}
	return claims.Subject, nil
}
