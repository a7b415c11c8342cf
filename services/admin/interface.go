package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"unilink/config"
	"unilink/models"
	"unilink/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is how long an admin login lasts.
const SessionTTL = 7 * 24 * time.Hour

const tokenSubject = "admin"

// AdminService gates the admin surface behind a password login.
type AdminService interface {
	Configured() bool
	Login(ctx context.Context, password, userAgent, ip string) (string, *models.AdminSession, error)
	Validate(ctx context.Context, token string) (*models.AdminSession, error)
	Logout(ctx context.Context, token string) error
}

type DefaultAdminService struct {
	passwordHash []byte
	password     []byte
	secret       []byte
	sessions     SessionStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewDefaultAdminService(cfg *config.Config, sessions SessionStore, logger *zap.Logger) (*DefaultAdminService, error) {
	s := &DefaultAdminService{
		password: []byte(cfg.AdminPassword),
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
	if cfg.AdminPasswordHash != "" {
		s.passwordHash = []byte(cfg.AdminPasswordHash)
	}
	if !cfg.AdminConfigured() {
		logger.Warn("No admin password configured; admin routes are open")
	}

	if cfg.AdminSessionSecret != "" {
		s.secret = []byte(cfg.AdminSessionSecret)
	} else {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate admin session secret: %w", err)
		}
		s.secret = []byte(hex.EncodeToString(buf))
		logger.Warn("ADMIN_SESSION_SECRET not set; admin sessions will not survive a restart")
	}
	return s, nil
}

func (s *DefaultAdminService) Configured() bool {
	return len(s.passwordHash) > 0 || len(s.password) > 0
}

func (s *DefaultAdminService) checkPassword(password string) bool {
	if len(s.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare(s.password, []byte(password)) == 1
}

// Login checks the password and issues a signed token backed by a stored
// session.
func (s *DefaultAdminService) Login(ctx context.Context, password, userAgent, ip string) (string, *models.AdminSession, error) {
	if !s.Configured() {
		return "", nil, utils.NewAppError(utils.KindConfiguration, "Admin login is not configured. Set ADMIN_PASSWORD in environment.")
	}
	if !s.checkPassword(password) {
		s.logger.Warn("Failed admin login", zap.String("ip", ip))
		return "", nil, utils.NewAppError(utils.KindUnauthorized, "Invalid password")
	}

	now := s.now().UTC()
	sess := &models.AdminSession{
		ID:        uuid.NewString(),
		Device:    describeDevice(userAgent),
		IP:        ip,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	claims := jwt.RegisteredClaims{
		Subject:   tokenSubject,
		ID:        sess.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, utils.WrapAppError(utils.KindInternal, "Failed to sign admin token", err)
	}

	if err := s.sessions.Save(ctx, sess, SessionTTL); err != nil {
		return "", nil, utils.WrapAppError(utils.KindInternal, "Failed to store admin session", err)
	}
	s.logger.Info("Admin login", zap.String("sessionId", sess.ID), zap.String("device", sess.Device), zap.String("ip", ip))
	return token, sess, nil
}

func (s *DefaultAdminService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithSubject(tokenSubject), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token has no id")
	}
	return claims, nil
}

// Validate accepts a token only while its session is still stored.
func (s *DefaultAdminService) Validate(ctx context.Context, token string) (*models.AdminSession, error) {
	unauthorized := utils.NewAppError(utils.KindUnauthorized, "Unauthorized")
	if token == "" {
		return nil, unauthorized
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, unauthorized
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, unauthorized
		}
		return nil, utils.WrapAppError(utils.KindInternal, "Failed to load admin session", err)
	}
	return sess, nil
}

// Logout revokes the token's session. Unparseable tokens are ignored.
func (s *DefaultAdminService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return utils.WrapAppError(utils.KindInternal, "Failed to revoke admin session", err)
	}
	s.logger.Info("Admin logout", zap.String("sessionId", claims.ID))
	return nil
}

// describeDevice summarises a User-Agent as "Browser on OS".
func describeDevice(ua string) string {
	if ua == "" {
		return "unknown"
	}
	parsed := user_agent.New(ua)
	browser, _ := parsed.Browser()
	platform := parsed.OS()
	switch {
	case browser == "" && platform == "":
		return "unknown"
	case platform == "":
		return browser
	case browser == "":
		return platform
	}
	return browser + " on " + platform
}
