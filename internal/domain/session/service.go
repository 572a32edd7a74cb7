package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/infra/logger"
	"github.com/sewman/uwip-bot/internal/infra/metrics"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

var (
	ErrTenantRequired   = errors.New("tenant is not configured")
	ErrEmptyUsername    = errors.New("username is empty")
	ErrEmptyPassword    = errors.New("password is empty")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNoStoredLogin    = errors.New("no stored credentials")
	ErrNotAuthenticated = errors.New("not authenticated")
)

type Authenticator interface {
	Login(ctx context.Context, ep wipapi.Endpoint, username, passwordHash string) error
	UserRights(ctx context.Context, ep wipapi.Endpoint, username string) ([]string, error)
}

type CredentialRepo interface {
	Load(chatID int64) (*Credentials, error)
	Save(chatID int64, c Credentials) error
	Delete(chatID int64) error
}

type Service struct {
	api     Authenticator
	creds   CredentialRepo
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewService(api Authenticator, creds CredentialRepo, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{api: api, creds: creds, log: log, metrics: m}
}

// Login — ручной вход. remember=true сохраняет blob автологина,
// remember=false удаляет ранее сохранённый.
func (s *Service) Login(ctx context.Context, chatID int64, t *tenant.Config, username, password string, remember bool) (*Session, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}
	hash := wipapi.HashPassword(password)

	sess, err := s.login(ctx, chatID, t, username, hash)
	s.metrics.Login("manual", err == nil)
	if err != nil {
		return nil, err
	}

	if remember {
		err = s.creds.Save(chatID, Credentials{Username: username, PasswordHash: hash})
	} else {
		err = s.creds.Delete(chatID)
	}
	if err != nil {
		logger.Chat(s.log, chatID).Error("auto-login credentials not updated", "err", err)
	}
	return sess, nil
}

// AutoLogin пробует сохранённые данные. При любой ошибке blob удаляется,
// чтобы не повторять неудачные попытки, и вызывающий показывает форму входа.
func (s *Service) AutoLogin(ctx context.Context, chatID int64, t *tenant.Config) (*Session, error) {
	c, err := s.creds.Load(chatID)
	if err != nil {
		logger.Chat(s.log, chatID).Warn("stored credentials unreadable", "err", err)
		_ = s.creds.Delete(chatID)
		return nil, ErrNoStoredLogin
	}
	if c == nil {
		return nil, ErrNoStoredLogin
	}

	sess, err := s.login(ctx, chatID, t, c.Username, c.PasswordHash)
	s.metrics.Login("auto", err == nil)
	if err != nil {
		if derr := s.creds.Delete(chatID); derr != nil {
			logger.Chat(s.log, chatID).Error("drop stored credentials", "err", derr)
		}
		logger.Chat(s.log, chatID).Info("auto-login failed, falling back to form", "err", err)
		return nil, err
	}
	return sess, nil
}

// Logout забывает автологин: «Сменить пользователя» не должен сразу войти обратно.
func (s *Service) Logout(chatID int64) error {
	return s.creds.Delete(chatID)
}

func (s *Service) login(ctx context.Context, chatID int64, t *tenant.Config, username, hash string) (*Session, error) {
	if t == nil || !t.Configured() {
		return nil, ErrTenantRequired
	}
	ep := t.Endpoint()

	if err := s.api.Login(ctx, ep, username, hash); err != nil {
		if wipapi.IsAuth(err) {
			if derr := s.creds.Delete(chatID); derr != nil {
				logger.Chat(s.log, chatID).Error("drop stored credentials", "err", derr)
			}
			return nil, errors.Join(ErrAuthFailed, err)
		}
		return nil, err
	}

	rights, err := s.api.UserRights(ctx, ep, username)
	if err != nil {
		logger.Chat(s.log, chatID).Warn("user rights unavailable", "err", err)
	}

	return &Session{
		Username:      username,
		EmployeeNo:    username,
		EmployeeName:  username,
		Authenticated: true,
		Rights:        rights,
	}, nil
}
