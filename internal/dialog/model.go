package dialog

import (
	"encoding/json"
	"fmt"

	"github.com/sewman/uwip-bot/internal/domain/documents"
)

// Kind — тип экрана.
type Kind string

const (
	KindLogin     Kind = "login"
	KindHome      Kind = "home"
	KindDocList   Kind = "doc_list"
	KindDocsToday Kind = "docs_today"
	KindDocDetail Kind = "doc_detail"
)

// Screen — экран вместе с обязательными параметрами.
type Screen interface {
	Kind() Kind
}

type Login struct{}

type Home struct{}

type DocList struct {
	Stage documents.Stage `json:"stage"`
}

type DocsToday struct {
	Stage documents.Stage `json:"stage"`
}

type DocDetail struct {
	Ref  documents.Ref  `json:"ref"`
	Mode documents.Mode `json:"mode"`
}

func (Login) Kind() Kind     { return KindLogin }
func (Home) Kind() Kind      { return KindHome }
func (DocList) Kind() Kind   { return KindDocList }
func (DocsToday) Kind() Kind { return KindDocsToday }
func (DocDetail) Kind() Kind { return KindDocDetail }

// frame — сериализованный экран: вид + параметры.
type frame struct {
	Kind   Kind            `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

func encodeScreen(s Screen) (frame, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return frame{}, err
	}
	return frame{Kind: s.Kind(), Params: raw}, nil
}

func decodeScreen(f frame) (Screen, error) {
	var s Screen
	switch f.Kind {
	case KindLogin:
		return Login{}, nil
	case KindHome:
		return Home{}, nil
	case KindDocList:
		var v DocList
		if err := unmarshalParams(f.Params, &v); err != nil {
			return nil, err
		}
		s = v
	case KindDocsToday:
		var v DocsToday
		if err := unmarshalParams(f.Params, &v); err != nil {
			return nil, err
		}
		s = v
	case KindDocDetail:
		var v DocDetail
		if err := unmarshalParams(f.Params, &v); err != nil {
			return nil, err
		}
		s = v
	default:
		return nil, fmt.Errorf("unknown screen %q", f.Kind)
	}
	return s, nil
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// Payload — черновые данные чата: ожидаемый ввод, введённые количества,
// id последнего сообщения бота.
type Payload map[string]any

// Ключи Payload.
const (
	KeyAwait    = "await"     // какой текст ждём от пользователя
	KeyLastMID  = "last_mid"  // сообщение, которое редактируем
	KeyUsername = "username"  // логин между шагами ввода
	KeyRemember = "remember"  // флаг автологина
	KeyDraft    = "draft"     // введённые количества: индекс строки → qty
	KeyLineIdx  = "line_idx"  // строка, для которой ждём количество
	KeyJournal  = "journal"   // id записи журнала для повтора шага 2
	KeyFromDate = "from_date" // период списка
	KeyToDate   = "to_date"
	KeyQuery    = "query"     // фильтр списка
	KeyPage     = "page"
	KeyShown    = "shown" // документы на кнопках текущей страницы: индекс → ref
)

// Await — какой ввод ожидается текстом.
type Await string

const (
	AwaitNone         Await = ""
	AwaitCustomerCode Await = "customer_code"
	AwaitUsername     Await = "username"
	AwaitPassword     Await = "password"
	AwaitQuantity     Await = "quantity"
	AwaitSearch       Await = "search"
	AwaitDateRange    Await = "date_range"
)

type Item struct {
	ChatID  int64
	Stack   Stack
	Payload Payload
}

// GetString Helper для безопасного чтения строк из payload
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt — числа из JSON приходят float64.
func GetInt(p Payload, key string) (int, bool) {
	switch v := p[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func GetBool(p Payload, key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Draft — введённые количества по индексу строки.
func Draft(p Payload) map[int]int {
	out := map[int]int{}
	raw, ok := p[KeyDraft].(map[string]any)
	if !ok {
		return out
	}
	for k, v := range raw {
		var i int
		if _, err := fmt.Sscanf(k, "%d", &i); err != nil {
			continue
		}
		if f, ok := v.(float64); ok {
			out[i] = int(f)
		}
	}
	return out
}

// SetDraft кладёт черновик в формате, который переживёт JSON.
func SetDraft(p Payload, d map[int]int) {
	if len(d) == 0 {
		delete(p, KeyDraft)
		return
	}
	raw := make(map[string]any, len(d))
	for i, q := range d {
		raw[fmt.Sprint(i)] = float64(q)
	}
	p[KeyDraft] = raw
}

// SetShown запоминает, какой документ стоит за каждой кнопкой списка.
// Открытие идёт по этому снимку, а не по свежему ответу сервера.
func SetShown(p Payload, refs map[int]documents.Ref) {
	if len(refs) == 0 {
		delete(p, KeyShown)
		return
	}
	raw, err := json.Marshal(refs)
	if err != nil {
		delete(p, KeyShown)
		return
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		delete(p, KeyShown)
		return
	}
	p[KeyShown] = v
}

// Shown — документ с кнопки i последнего показанного списка.
func Shown(p Payload, i int) (documents.Ref, bool) {
	raw, err := json.Marshal(p[KeyShown])
	if err != nil {
		return documents.Ref{}, false
	}
	var refs map[int]documents.Ref
	if err := json.Unmarshal(raw, &refs); err != nil {
		return documents.Ref{}, false
	}
	ref, ok := refs[i]
	return ref, ok
}
