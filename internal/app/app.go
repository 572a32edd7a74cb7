// Package app держит контекст каждого чата (тенант + сессия) и связывает
// доменные сервисы в сценарии: запуск, выбор клиента, вход, выход.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/sewman/uwip-bot/internal/domain/dashboard"
	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/infra/logger"
)

// Boot — куда вести пользователя после запуска чата.
type Boot int

const (
	BootNeedTenant Boot = iota
	BootNeedLogin
	BootReady
)

type Deps struct {
	Resolver  *tenant.Resolver
	Tenants   *tenant.Store
	Sessions  *session.Service
	Dashboard *dashboard.Service
	Documents *documents.Service
	// Caches сбрасываются при выходе пользователя
	Caches documents.Invalidator
	Log    *slog.Logger
}

type Service struct {
	resolver *tenant.Resolver
	tenants  *tenant.Store
	sessions *session.Service
	dash     *dashboard.Service
	docs     *documents.Service
	caches   documents.Invalidator
	log      *slog.Logger

	mu     sync.Mutex
	scopes map[int64]*session.Scope
}

func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		resolver: d.Resolver,
		tenants:  d.Tenants,
		sessions: d.Sessions,
		dash:     d.Dashboard,
		docs:     d.Documents,
		caches:   d.Caches,
		log:      d.Log,
		scopes:   map[int64]*session.Scope{},
	}
}

func (s *Service) Documents() *documents.Service { return s.docs }

// Scope — текущий контекст чата; nil, если чат ещё не запускался.
func (s *Service) Scope(chatID int64) *session.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scopes[chatID]
}

func (s *Service) setScope(sc *session.Scope) {
	s.mu.Lock()
	s.scopes[sc.ChatID] = sc
	s.mu.Unlock()
}

func (s *Service) dropScope(chatID int64) {
	s.mu.Lock()
	delete(s.scopes, chatID)
	s.mu.Unlock()
}

// Bootstrap создаёт контекст чата: читает тенанта и пробует автологин.
// Ошибка возвращается только при сбое локального хранилища; неудачный
// автологин — это BootNeedLogin.
func (s *Service) Bootstrap(ctx context.Context, chatID int64) (Boot, *session.Scope, error) {
	if sc := s.Scope(chatID); sc.Authenticated() {
		return BootReady, sc, nil
	}
	t, err := s.tenants.Get(chatID)
	if err != nil {
		return BootNeedTenant, nil, err
	}
	sc := &session.Scope{ChatID: chatID, Tenant: t}
	s.setScope(sc)
	if t == nil {
		return BootNeedTenant, sc, nil
	}

	sess, err := s.sessions.AutoLogin(ctx, chatID, t)
	if err != nil {
		if !errors.Is(err, session.ErrNoStoredLogin) {
			logger.Chat(s.log, chatID).Info("auto-login skipped", "err", err)
		}
		return BootNeedLogin, sc, nil
	}
	sc = s.startSession(ctx, chatID, t, sess)
	return BootReady, sc, nil
}

// SubmitCustomerCode разрешает и сохраняет тенанта.
func (s *Service) SubmitCustomerCode(ctx context.Context, chatID int64, code string) (*session.Scope, error) {
	cfg, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.tenants.Save(chatID, cfg); err != nil {
		return nil, err
	}
	sc := &session.Scope{ChatID: chatID, Tenant: &cfg}
	s.setScope(sc)
	logger.Chat(s.log, chatID).Info("tenant configured", "alias", cfg.DatabaseAlias)
	return sc, nil
}

// Login — ручной вход. Контекст чата заменяется новым.
func (s *Service) Login(ctx context.Context, chatID int64, username, password string, remember bool) (*session.Scope, error) {
	var t *tenant.Config
	if sc := s.Scope(chatID); sc.HasTenant() {
		t = sc.Tenant
	} else {
		stored, err := s.tenants.Get(chatID)
		if err != nil {
			return nil, err
		}
		t = stored
	}
	if t == nil {
		return nil, session.ErrTenantRequired
	}
	sess, err := s.sessions.Login(ctx, chatID, t, username, password, remember)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, chatID, t, sess), nil
}

// startSession подтягивает главный экран, чтобы в сессии появились права.
func (s *Service) startSession(ctx context.Context, chatID int64, t *tenant.Config, sess *session.Session) *session.Scope {
	sc := &session.Scope{ChatID: chatID, Tenant: t, Session: sess}
	if s.caches != nil {
		s.caches.Invalidate(sc.CacheKey())
	}
	if _, err := s.Home(ctx, sc, true); err != nil {
		logger.Chat(s.log, chatID).Warn("home after login failed", "err", err)
	}
	s.setScope(sc)
	logger.Chat(s.log, chatID).Info("session started", "user", sess.Username)
	return sc
}

// Home — главный экран; права и счётчики переносятся в сессию.
func (s *Service) Home(ctx context.Context, sc *session.Scope, refresh bool) (dashboard.HomeInfo, error) {
	h, err := s.dash.Fetch(ctx, sc, refresh)
	if err != nil {
		return h, err
	}
	dashboard.Apply(sc.Session, h)
	return h, nil
}

// Logout — «Đổi người dùng»: сессия закрыта, автологин забыт, тенант остаётся.
func (s *Service) Logout(chatID int64) error {
	sc := s.Scope(chatID)
	if sc != nil && s.caches != nil && sc.Authenticated() {
		s.caches.Invalidate(sc.CacheKey())
	}
	err := s.sessions.Logout(chatID)
	var t *tenant.Config
	if sc != nil {
		t = sc.Tenant
	}
	s.setScope(&session.Scope{ChatID: chatID, Tenant: t})
	return err
}

// ChangeCustomer — выход плюс удаление тенанта; контекст чата уничтожается.
func (s *Service) ChangeCustomer(chatID int64) error {
	err := s.Logout(chatID)
	if cerr := s.tenants.Clear(chatID); cerr != nil {
		err = errors.Join(err, cerr)
	}
	s.dropScope(chatID)
	return err
}
