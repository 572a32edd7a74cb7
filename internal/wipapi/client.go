// Package wipapi — HTTP-клиент JSON API бэкенда SEWMAN u@WIP.
//
// Все запросы тенанта идут на {serverURL}/{databaseAlias}/{path}; поиск
// тенанта — на фиксированный мастер-URL по коду клиента.
package wipapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sewman/uwip-bot/internal/infra/metrics"
)

const (
	pathLogin       = "general/login"
	pathUserRights  = "general/getuserrights"
	pathUserInfo    = "general/swip/getwipuserinfo"
	pathHomeInfo    = "general/swip/getwiphomeinfo"
	pathDocList     = "general/swip/getwipdoclist"
	pathDocDetail   = "general/swip/getwipdocdetail"
	pathDocsToday   = "general/swip/getwipdoclisttoday"
	pathInsertMastr = "general/swip/insertwipdocmaster"
	pathInsertDetl  = "general/swip/insertwipdocdetail"

	// номер приложения в getuserrights
	appNo = "10"

	dateLayout = "2006-01-02"
)

// Endpoint — куда ходить за данными тенанта.
type Endpoint struct {
	ServerURL string
	Alias     string
}

func (e Endpoint) Valid() bool {
	return strings.TrimSpace(e.ServerURL) != "" && strings.TrimSpace(e.Alias) != ""
}

func (e Endpoint) URL(path string) string {
	return strings.TrimRight(e.ServerURL, "/") + "/" + strings.Trim(e.Alias, "/") + "/" + strings.TrimLeft(path, "/")
}

type Options struct {
	MasterURL      string
	AuthTimeout    time.Duration
	RequestTimeout time.Duration
	HTTPClient     *http.Client
	Log            *slog.Logger
	Metrics        *metrics.Metrics
}

type Client struct {
	http           *http.Client
	masterURL      string
	authTimeout    time.Duration
	requestTimeout time.Duration
	log            *slog.Logger
	metrics        *metrics.Metrics
}

func New(o Options) *Client {
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := o.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Client{
		http:           hc,
		masterURL:      o.MasterURL,
		authTimeout:    o.AuthTimeout,
		requestTimeout: o.RequestTimeout,
		log:            log,
		metrics:        o.Metrics,
	}
	if c.authTimeout <= 0 {
		c.authTimeout = 10 * time.Second
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = 15 * time.Second
	}
	return c
}

// do выполняет запрос и декодирует JSON-ответ в out.
// Таймаут ограничивает всю жизнь запроса; повторов нет.
func (c *Client) do(ctx context.Context, method, endpoint, rawURL string, params url.Values, timeout time.Duration, out any) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveAPI(endpoint, started, err)
		if err != nil {
			c.log.Warn("api request failed", "endpoint", endpoint, "duration", time.Since(started), "err", err)
			return
		}
		c.log.Debug("api request", "endpoint", endpoint, "duration", time.Since(started))
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u, err := url.Parse(rawURL)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Timeout: isTimeout(ctx, err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RequestError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(ctx, err) {
			return &RequestError{Endpoint: endpoint, Timeout: true, Err: err}
		}
		return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func day(t time.Time) string { return t.Format(dateLayout) }
