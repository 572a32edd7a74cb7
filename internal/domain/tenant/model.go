package tenant

import (
	"strings"

	"github.com/sewman/uwip-bot/internal/wipapi"
)

// Config — к какому серверу и базе ходит установка. Неизменен до «Сменить клиента».
type Config struct {
	CustomerID    string `json:"customer_id"`
	ServerURL     string `json:"server_url"`
	DatabaseName  string `json:"database_name"`
	DatabaseAlias string `json:"database_alias"`
}

func (c Config) Configured() bool {
	return strings.TrimSpace(c.ServerURL) != "" && strings.TrimSpace(c.DatabaseAlias) != ""
}

func (c Config) Endpoint() wipapi.Endpoint {
	return wipapi.Endpoint{ServerURL: c.ServerURL, Alias: c.DatabaseAlias}
}

// Selected — запись выбранного тенанта, по которой строятся исходящие запросы.
type Selected struct {
	Scheme     string `json:"scheme,omitempty"`
	ServerHost string `json:"server_host"`
	DBAlias    string `json:"db_alias"`
	DBName     string `json:"db_name"`
}

func (c Config) Selected() Selected {
	scheme := "http"
	if strings.HasPrefix(c.ServerURL, "https://") {
		scheme = "https"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(c.ServerURL, "https://"), "http://")
	return Selected{Scheme: scheme, ServerHost: host, DBAlias: c.DatabaseAlias, DBName: c.DatabaseName}
}

func (s Selected) Valid() bool {
	return strings.TrimSpace(s.ServerHost) != "" && strings.TrimSpace(s.DBAlias) != ""
}

// BaseURL — адрес сервера; записи без схемы считаются http.
func (s Selected) BaseURL() string {
	scheme := s.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + s.ServerHost
}
