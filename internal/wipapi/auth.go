package wipapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LookupCustomer ищет параметры подключения по коду клиента.
func (c *Client) LookupCustomer(ctx context.Context, code string) (ConnectionInfo, error) {
	var env envelope[ConnectionInfo]
	params := url.Values{"customerID": {code}}
	if err := c.do(ctx, http.MethodGet, "getconnectioninfo", c.masterURL, params, c.authTimeout, &env); err != nil {
		return ConnectionInfo{}, err
	}
	if !env.Status || len(env.List) == 0 {
		return ConnectionInfo{}, ErrTenantNotFound
	}
	info := env.List[0]
	if strings.TrimSpace(info.ServerIP) == "" || strings.TrimSpace(info.DBAlias) == "" {
		return ConnectionInfo{}, ErrTenantInvalid
	}
	return info, nil
}

// Login проверяет пару логин/хэш пароля. passwordHash — результат HashPassword.
func (c *Client) Login(ctx context.Context, ep Endpoint, username, passwordHash string) error {
	var env envelope[struct{}]
	params := url.Values{
		"name_usl":     {username},
		"password_usl": {passwordHash},
	}
	if err := c.do(ctx, http.MethodGet, "login", ep.URL(pathLogin), params, c.authTimeout, &env); err != nil {
		return err
	}
	if !env.Status {
		return &AuthError{Message: env.ErrMsg}
	}
	return nil
}

// UserRights возвращает номера прав (NO_MUL) пользователя.
func (c *Client) UserRights(ctx context.Context, ep Endpoint, username string) ([]string, error) {
	var env envelope[UserRight]
	params := url.Values{
		"papp_no":  {appNo},
		"puser_no": {username},
	}
	if err := c.do(ctx, http.MethodGet, "getuserrights", ep.URL(pathUserRights), params, c.authTimeout, &env); err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, &RejectedError{Endpoint: "getuserrights", Message: env.Message}
	}
	out := make([]string, 0, len(env.List))
	for _, r := range env.List {
		s := strings.Trim(strings.TrimSpace(string(r.NoMul)), `"`)
		if s == "" || s == "null" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// UserInfo — сотрудник, подразделение и флаги прав. nil, если данных нет.
func (c *Client) UserInfo(ctx context.Context, ep Endpoint, username string, on time.Time) (*UserInfo, error) {
	var env envelope[UserInfo]
	if err := c.do(ctx, http.MethodGet, "getwipuserinfo", ep.URL(pathUserInfo), dayParams(username, on), c.authTimeout, &env); err != nil {
		return nil, err
	}
	if !env.Status || len(env.List) == 0 {
		return nil, nil
	}
	return &env.List[0], nil
}

// HomeQuantities — счётчики главного экрана. nil, если данных нет.
func (c *Client) HomeQuantities(ctx context.Context, ep Endpoint, username string, on time.Time) (*HomeQuantities, error) {
	var env envelope[HomeQuantities]
	if err := c.do(ctx, http.MethodGet, "getwiphomeinfo", ep.URL(pathHomeInfo), dayParams(username, on), c.authTimeout, &env); err != nil {
		return nil, err
	}
	if !env.Status || len(env.List) == 0 {
		return nil, nil
	}
	return &env.List[0], nil
}

func dayParams(username string, on time.Time) url.Values {
	return url.Values{
		"username": {username},
		"fdate":    {day(on)},
		"tdate":    {day(on)},
	}
}
