package session

import (
	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

// Permissions из флагов главного экрана: RIGHT_719 — просмотр, RIGHT_729 — правка.
type Permissions struct {
	View bool
	Edit bool
}

// Counters — счётчики главного экрана по этапам 1..4.
type Counters struct {
	Remaining [4]int
	Today     [4]int
}

type Session struct {
	Username       string
	EmployeeNo     string
	EmployeeName   string
	DepartmentName string
	Authenticated  bool
	Permissions    Permissions
	Rights         []string
	Counters       Counters
}

// Credentials — blob автологина. Пароль хранится только хэшем.
type Credentials struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Scope — контекст чата, который протаскивается через весь workflow:
// выбранный тенант и текущая сессия. Создаётся при старте, заменяется при
// логине/логауте, уничтожается при смене клиента.
type Scope struct {
	ChatID  int64
	Tenant  *tenant.Config
	Session *Session
}

func (s *Scope) HasTenant() bool {
	return s != nil && s.Tenant != nil && s.Tenant.Configured()
}

func (s *Scope) Authenticated() bool {
	return s.HasTenant() && s.Session != nil && s.Session.Authenticated
}

func (s *Scope) Endpoint() wipapi.Endpoint {
	if !s.HasTenant() {
		return wipapi.Endpoint{}
	}
	return s.Tenant.Endpoint()
}

func (s *Scope) Username() string {
	if s == nil || s.Session == nil {
		return ""
	}
	return s.Session.Username
}

// CacheKey — префикс ключей кэша пользователя в рамках тенанта.
func (s *Scope) CacheKey() string {
	if !s.HasTenant() {
		return ""
	}
	return s.Tenant.DatabaseAlias + "|" + s.Username() + "|"
}

func (s *Scope) CanView() bool {
	return s.Authenticated() && s.Session.Permissions.View
}

func (s *Scope) CanEdit() bool {
	return s.Authenticated() && s.Session.Permissions.Edit
}
