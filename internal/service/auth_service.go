package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resortdesk/internal/config"
	"resortdesk/internal/database"
	"resortdesk/internal/domain"
	"resortdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

type AuthService struct {
	staff    domain.StaffRepository
	sessions domain.SessionStore
	secret   []byte
	ttl      time.Duration
	attempts int
	window   time.Duration
	logger   *zerolog.Logger
}

func NewAuthService(staff domain.StaffRepository, sessions domain.SessionStore, cfg config.APIAuthConfig, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		staff:    staff,
		sessions: sessions,
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.TokenTTL,
		attempts: cfg.LoginAttempts,
		window:   cfg.LoginWindow,
		logger:   logger,
	}
}

// Login verifies the credentials and issues a signed token. Attempts are
// limited per email address.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if s.attempts > 0 {
		allowed, err := s.sessions.CheckRateLimit(ctx, "login:"+email, s.attempts, s.window)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Login rate limit check failed")
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	emp, err := s.staff.GetEmployeeByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		s.logger.Info().Str("employee_id", emp.ID).Msg("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(emp)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("employee_id", emp.ID).Str("role", emp.Role).Msg("Login succeeded")
	return &models.LoginResponse{Token: token, Role: emp.Role, Name: emp.Name}, nil
}

func (s *AuthService) IssueToken(emp *models.Employee) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: emp.Name,
		Role: emp.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and turns it into a session principal.
func (s *AuthService) ParseToken(raw string) (*models.Session, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" || !models.ValidRole(claims.Role) {
		return nil, errors.New("invalid token: missing subject or role")
	}
	return &models.Session{
		UserID:      claims.Subject,
		Name:        claims.Name,
		Role:        claims.Role,
		Permissions: models.PermissionsFor(claims.Role),
	}, nil
}

// EnsureAdmin creates the configured bootstrap admin when no account with
// that email exists yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin config.BootstrapAdmin) error {
	if strings.TrimSpace(admin.Email) == "" {
		return nil
	}
	_, err := s.staff.GetEmployeeByEmail(ctx, admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if admin.Password == "" {
		return errors.New("bootstrap admin password is empty")
	}

	hash, err := HashPassword(admin.Password)
	if err != nil {
		return err
	}
	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	emp := &models.Employee{Name: name, Email: admin.Email, Role: models.RoleAdmin, PasswordHash: hash}
	if err := s.staff.CreateEmployee(ctx, emp); err != nil {
		return err
	}
	s.logger.Info().Str("email", emp.Email).Msg("Bootstrap admin created")
	return nil
}
