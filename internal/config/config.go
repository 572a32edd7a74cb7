package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
		Locale   string
	} `mapstructure:"app"`

	Telegram struct {
		Token       string
		PollTimeout int `mapstructure:"poll_timeout"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Storage struct {
		// Path каталога badger; пустая строка — хранилище в памяти
		Path string
	} `mapstructure:"storage"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	API struct {
		MasterURL      string        `mapstructure:"master_url"`
		AuthTimeout    time.Duration `mapstructure:"auth_timeout"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"api"`

	Cache struct {
		ListTTL  time.Duration `mapstructure:"list_ttl"`
		TodayTTL time.Duration `mapstructure:"today_ttl"`
		HomeTTL  time.Duration `mapstructure:"home_ttl"`
		Size     int
	} `mapstructure:"cache"`
}

const DefaultMasterURL = "http://sg.ketoan1a.com:8081/SewmanCommonApi/general/getconnectioninfo"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("app.locale", "vi")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("storage.path", "data/local")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("api.master_url", DefaultMasterURL)
	v.SetDefault("api.auth_timeout", 10*time.Second)
	v.SetDefault("api.request_timeout", 15*time.Second)
	v.SetDefault("cache.list_ttl", 5*time.Minute)
	v.SetDefault("cache.today_ttl", 2*time.Minute)
	v.SetDefault("cache.home_ttl", 5*time.Minute)
	v.SetDefault("cache.size", 512)
}

// Load читает YAML-файл, .env рядом с бинарником и переменные APP_*.
// Путь к файлу может быть пустым — тогда работают только defaults и ENV.
func Load(path string) (Config, error) {
	var c Config

	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.API.AuthTimeout <= 0 || c.API.RequestTimeout <= 0 {
		return errors.New("api timeouts must be positive")
	}
	return nil
}

// Location возвращает часовой пояс, в котором считается «сегодня».
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
