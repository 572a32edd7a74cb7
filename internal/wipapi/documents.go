package wipapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DocList — документы этапа за период. status=false — пустой список.
func (c *Client) DocList(ctx context.Context, ep Endpoint, username string, stage int, from, to time.Time) ([]DocMaster, error) {
	var env envelope[DocMaster]
	params := url.Values{
		"username": {username},
		"fdate":    {day(from)},
		"tdate":    {day(to)},
		"type":     {strconv.Itoa(stage)},
	}
	if err := c.do(ctx, http.MethodGet, "getwipdoclist", ep.URL(pathDocList), params, c.requestTimeout, &env); err != nil {
		return nil, err
	}
	if !env.Status {
		return []DocMaster{}, nil
	}
	return nonNil(env.List), nil
}

// DocsToday — документы этапа, записанные за день on.
func (c *Client) DocsToday(ctx context.Context, ep Endpoint, username string, stage int, on time.Time) ([]DocMaster, error) {
	var env envelope[DocMaster]
	params := dayParams(username, on)
	params.Set("type", strconv.Itoa(stage))
	if err := c.do(ctx, http.MethodGet, "getwipdoclisttoday", ep.URL(pathDocsToday), params, c.requestTimeout, &env); err != nil {
		return nil, err
	}
	if !env.Status {
		return []DocMaster{}, nil
	}
	return nonNil(env.List), nil
}

// DocDetail — шапка и строки размер/цвет документа.
func (c *Client) DocDetail(ctx context.Context, ep Endpoint, q DetailQuery, on time.Time) (DocMaster, []DocDetail, error) {
	var env detailEnvelope
	params := url.Values{
		"noDed": {q.NoDed},
		"noDep": {q.NoDep},
		"noLot": {q.NoLot},
		"noOrd": {q.NoOrd712},
		"fdate": {day(on)},
		"tdate": {day(on)},
		"type":  {strconv.Itoa(q.Stage)},
	}
	if err := c.do(ctx, http.MethodGet, "getwipdocdetail", ep.URL(pathDocDetail), params, c.requestTimeout, &env); err != nil {
		return DocMaster{}, nil, err
	}
	if !env.Status {
		return DocMaster{}, nil, ErrDetailUnavailable
	}
	return env.Master, nonNil(env.List), nil
}

// InsertMaster — шаг 1 сохранения. Сервер возвращает номер документа в err_msg.
func (c *Client) InsertMaster(ctx context.Context, ep Endpoint, in MasterInput) (string, error) {
	var env envelope[struct{}]
	params := url.Values{
		"username": {in.Username},
		"noOrd":    {in.NoOrd},
		"noOrd712": {in.NoOrd712},
		"noLot":    {in.NoLot},
		"noDep":    {in.NoDep},
		"noDepTo":  {in.NoDepTo},
		"noPrd":    {in.NoPrd},
		"type":     {strconv.Itoa(in.Stage)},
	}
	if err := c.do(ctx, http.MethodPost, "insertwipdocmaster", ep.URL(pathInsertMastr), params, c.requestTimeout, &env); err != nil {
		return "", err
	}
	if !env.Status {
		return "", &RejectedError{Endpoint: "insertwipdocmaster", Message: firstNonEmpty(env.Message, env.ErrMsg)}
	}
	id := strings.TrimSpace(env.ErrMsg)
	if id == "" {
		return "", ErrNoDocumentID
	}
	return id, nil
}

// InsertDetail — шаг 2: строки документа noDed.
func (c *Client) InsertDetail(ctx context.Context, ep Endpoint, noDed, noOrd712 string, updates []DetailUpdate) error {
	raw, err := json.Marshal(nonNil(updates))
	if err != nil {
		return err
	}
	var env envelope[struct{}]
	params := url.Values{
		"noDed":   {noDed},
		"noOrd":   {noOrd712},
		"updates": {string(raw)},
	}
	if err := c.do(ctx, http.MethodPost, "insertwipdocdetail", ep.URL(pathInsertDetl), params, c.requestTimeout, &env); err != nil {
		return err
	}
	if !env.Status {
		return &RejectedError{Endpoint: "insertwipdocdetail", Message: firstNonEmpty(env.Message, env.ErrMsg)}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
