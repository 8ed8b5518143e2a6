package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

// AuthConfig holds the single admin credential pair and marker signing settings.
type AuthConfig struct {
	Email    string
	Password string
	Secret   string
	TTL      time.Duration
	Issuer   string
}

type sessionClaims struct {
	AdminLoggedIn bool `json:"admin_logged_in"`
	jwt.RegisteredClaims
}

// AuthService gates the dashboard behind the configured credentials.
type AuthService struct {
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	msgs      catalog.AdminMessages
	now       func() time.Time
}

func NewAuthService(validate *validator.Validate, logger *zap.Logger, cfg AuthConfig, cat *catalog.Catalog) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "forum-inscriptions-api"
	}
	return &AuthService{validator: validate, logger: logger, config: cfg, msgs: cat.Messages.Admin, now: time.Now}
}

// Authenticate validates req and issues a session marker.
func (s *AuthService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, firstFieldError(err, func(field, _, _ string) string {
			if field == "password" {
				return s.msgs.PasswordRequired
			}
			return s.msgs.EmailRequired
		})
	}

	token, err := s.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: token, ExpiresAt: s.now().Add(s.config.TTL).UTC()}, nil
}

// Login compares the pair verbatim and returns a signed marker.
func (s *AuthService) Login(_ context.Context, email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.config.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Password)) == 1
	if !emailOK || !passwordOK {
		s.logger.Warn("admin login rejected", zap.String("email", email))
		return "", appErrors.Clone(appErrors.ErrInvalidCredentials, s.msgs.InvalidCredentials)
	}

	now := s.now()
	claims := sessionClaims{
		AdminLoggedIn: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session")
	}
	s.logger.Info("admin logged in")
	return token, nil
}

// Verify accepts a marker issued by Login that has not expired.
func (s *AuthService) Verify(token string) error {
	if token == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, s.msgs.SessionRequired)
	}
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || !claims.AdminLoggedIn {
		if err == nil {
			err = errors.New("marker does not grant admin access")
		}
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, s.msgs.SessionRequired)
	}
	return nil
}

// TTL is how long an issued marker stays valid.
func (s *AuthService) TTL() time.Duration {
	return s.config.TTL
}
