// Package dashboard собирает главный экран из двух независимых запросов.
// Отказ одного из них не ломает экран: эта часть заменяется нулями.
package dashboard

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/sewman/uwip-bot/internal/cache"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/infra/logger"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

type API interface {
	UserInfo(ctx context.Context, ep wipapi.Endpoint, username string, on time.Time) (*wipapi.UserInfo, error)
	HomeQuantities(ctx context.Context, ep wipapi.Endpoint, username string, on time.Time) (*wipapi.HomeQuantities, error)
}

type HomeInfo struct {
	EmployeeNo     string
	EmployeeName   string
	DepartmentName string
	Counters       session.Counters
	Permissions    session.Permissions

	// Degraded — какие части не загрузились ("user", "quantities").
	Degraded []string
}

func (h HomeInfo) Partial() bool { return len(h.Degraded) > 0 }

type Service struct {
	api   API
	cache *cache.Store[HomeInfo]
	now   func() time.Time
	log   *slog.Logger
}

func NewService(api API, c *cache.Store[HomeInfo], now func() time.Time, log *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{api: api, cache: c, now: now, log: log}
}

func homeKey(sc *session.Scope) string { return sc.CacheKey() + "home" }

// Fetch возвращает главный экран; refresh=true игнорирует кэш.
// Частично загруженный результат не кэшируется.
func (s *Service) Fetch(ctx context.Context, sc *session.Scope, refresh bool) (HomeInfo, error) {
	if !sc.Authenticated() {
		return HomeInfo{}, session.ErrNotAuthenticated
	}
	key := homeKey(sc)
	if !refresh && s.cache != nil {
		if h, ok := s.cache.Get(key); ok {
			return h, nil
		}
	}

	ep, user, today := sc.Endpoint(), sc.Username(), s.now()

	var (
		ui              *wipapi.UserInfo
		hq              *wipapi.HomeQuantities
		userErr, qtyErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() { ui, userErr = s.api.UserInfo(ctx, ep, user, today) })
	wg.Go(func() { hq, qtyErr = s.api.HomeQuantities(ctx, ep, user, today) })
	wg.Wait()

	h := HomeInfo{EmployeeNo: user, EmployeeName: user}
	if userErr != nil {
		logger.Chat(s.log, sc.ChatID).Warn("home user info failed", "err", userErr)
		h.Degraded = append(h.Degraded, "user")
	} else if ui != nil {
		h.EmployeeNo = orDefault(ui.EmployeeNo, user)
		h.EmployeeName = orDefault(ui.EmployeeName, user)
		h.DepartmentName = ui.DepartmentName
		h.Permissions = session.Permissions{View: bool(ui.Right719), Edit: bool(ui.Right729)}
	}

	if qtyErr != nil {
		logger.Chat(s.log, sc.ChatID).Warn("home quantities failed", "err", qtyErr)
		h.Degraded = append(h.Degraded, "quantities")
	} else if hq != nil {
		h.Counters = session.Counters{Remaining: hq.Remaining(), Today: hq.Today()}
	}

	if !h.Partial() && s.cache != nil {
		s.cache.Put(key, h)
	}
	return h, nil
}

// Apply переносит данные главного экрана в сессию: права и счётчики.
func Apply(sess *session.Session, h HomeInfo) {
	if sess == nil {
		return
	}
	sess.EmployeeNo = h.EmployeeNo
	sess.EmployeeName = h.EmployeeName
	sess.DepartmentName = h.DepartmentName
	sess.Permissions = h.Permissions
	sess.Counters = h.Counters
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
