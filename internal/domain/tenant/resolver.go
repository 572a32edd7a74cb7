package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sewman/uwip-bot/internal/wipapi"
)

var (
	ErrEmptyCode = errors.New("customer code is empty")
	ErrNotFound  = errors.New("customer not found")
)

type Lookup interface {
	LookupCustomer(ctx context.Context, code string) (wipapi.ConnectionInfo, error)
}

type Resolver struct {
	api Lookup
}

func NewResolver(api Lookup) *Resolver { return &Resolver{api: api} }

// Resolve находит конфиг по введённому коду клиента. Повторов нет.
func (r *Resolver) Resolve(ctx context.Context, code string) (Config, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Config{}, ErrEmptyCode
	}
	info, err := r.api.LookupCustomer(ctx, code)
	if err != nil {
		if errors.Is(err, wipapi.ErrTenantNotFound) || errors.Is(err, wipapi.ErrTenantInvalid) {
			return Config{}, fmt.Errorf("%w: %s", ErrNotFound, code)
		}
		return Config{}, err
	}
	return fromConnection(code, info), nil
}

func fromConnection(code string, info wipapi.ConnectionInfo) Config {
	server := strings.TrimSpace(info.ServerIP)
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}
	c := Config{
		CustomerID:    strings.TrimSpace(info.ID),
		ServerURL:     server,
		DatabaseName:  strings.TrimSpace(info.DBName),
		DatabaseAlias: strings.TrimSpace(info.DBAlias),
	}
	if c.CustomerID == "" {
		c.CustomerID = code
	}
	if c.DatabaseName == "" {
		c.DatabaseName = c.DatabaseAlias
	}
	return c
}
