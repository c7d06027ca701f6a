package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

const (
	MinPasswordLength = 8
	DefaultRole       = "user"
)

// Config controls token issuance.
type Config struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	notifier usecase.Notifier
	cfg      Config
	now      usecase.Clock
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, notifier usecase.Notifier, cfg Config, logger *zap.Logger, clock usecase.Clock) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = usecase.SystemClock
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		notifier: notifier,
		cfg:      cfg,
		now:      clock,
		logger:   logger,
	}
}

// Register creates an account and posts a welcome notification.
func (uc *UseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, domain.Wrapf(domain.ErrInvalidPayload, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Wrapf(domain.ErrInvalidPayload, "email %q is malformed", input.Email)
	}
	if len(input.Password) < MinPasswordLength {
		return nil, domain.Wrapf(domain.ErrInvalidPayload, "password must be at least %d characters", MinPasswordLength)
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.Wrapf(domain.ErrUserExists, "email %s", email)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	now := uc.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		Roles:        []string{DefaultRole},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))

	uc.welcome(ctx, user.ID)
	return user, nil
}

func (uc *UseCase) welcome(ctx context.Context, userID string) {
	if uc.notifier == nil {
		return
	}
	_, err := uc.notifier.CreateNotification(ctx, domain.Notification{
		UserID:  userID,
		Title:   "Welcome to Task Manager",
		Message: "Create your first task to get started!",
		Type:    domain.NotificationInfo,
	})
	if err != nil {
		uc.logger.Warn("welcome notification failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Login verifies credentials, opens a session and signs a token for it.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now()
	session := domain.NewSession(uuid.NewString(), user.ID, now, uc.cfg.SessionTTL)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	user.LastLogin = &now
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		uc.logger.Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	token, err := uc.issueToken(user.ID, session)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Session: session, Token: token}, nil
}

func (uc *UseCase) issueToken(userID string, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": session.ID,
		"iat":        session.CreatedAt.Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	if uc.cfg.Issuer != "" {
		claims["iss"] = uc.cfg.Issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return signed, nil
}

// Logout revokes the session; unknown sessions are ignored.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// CurrentUser resolves the user behind a live session.
func (uc *UseCase) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrNoCurrentUser
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNoCurrentUser
		}
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrNoCurrentUser
	}
	return uc.users.GetByID(ctx, session.UserID)
}
