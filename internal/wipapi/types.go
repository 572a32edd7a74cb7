package wipapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Int — количество из ответа бэкенда. Бэкенд отдаёт числа то целыми,
// то дробными, то строкой, то null.
type Int int

func (n *Int) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Int(math.Round(f))
	return nil
}

// Flag — право доступа: true/false, 1/0 или "1"/"0".
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`)) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// envelope — общая обёртка ответов: status, list, err_msg, message.
type envelope[T any] struct {
	Status  Flag   `json:"status"`
	List    []T    `json:"list"`
	ErrMsg  string `json:"err_msg"`
	Message string `json:"message"`
}

type detailEnvelope struct {
	Status  Flag        `json:"status"`
	Master  DocMaster   `json:"master"`
	List    []DocDetail `json:"list"`
	Message string      `json:"message"`
}

// ConnectionInfo — строка мастер-справочника клиентов.
type ConnectionInfo struct {
	ID       string `json:"ID_ADI"`
	ServerIP string `json:"SERVER_IP"`
	DBName   string `json:"DB_NAME"`
	DBAlias  string `json:"DB_ALIAS"`
}

type UserRight struct {
	NoMul json.RawMessage `json:"NO_MUL"`
}

type UserInfo struct {
	EmployeeNo     string `json:"NO_EMP"`
	EmployeeName   string `json:"NAME_EMP"`
	DepartmentName string `json:"NAME_DEP"`
	Right719       Flag   `json:"RIGHT_719"`
	Right729       Flag   `json:"RIGHT_729"`
}

type HomeQuantities struct {
	Remain01 Int `json:"QTY_REMAIN_01"`
	Remain02 Int `json:"QTY_REMAIN_02"`
	Remain03 Int `json:"QTY_REMAIN_03"`
	Remain04 Int `json:"QTY_REMAIN_04"`
	InOut01  Int `json:"QTY_IN_OUT_01"`
	InOut02  Int `json:"QTY_IN_OUT_02"`
	InOut03  Int `json:"QTY_IN_OUT_03"`
	InOut04  Int `json:"QTY_IN_OUT_04"`
}

// Remaining и Today раскладывают счётчики по этапам 1..4.
func (h HomeQuantities) Remaining() [4]int {
	return [4]int{int(h.Remain01), int(h.Remain02), int(h.Remain03), int(h.Remain04)}
}

func (h HomeQuantities) Today() [4]int {
	return [4]int{int(h.InOut01), int(h.InOut02), int(h.InOut03), int(h.InOut04)}
}

type DocMaster struct {
	NoLot       string `json:"NO_LOT"`
	NoOrd       string `json:"NO_ORD"`
	NoOrd712    string `json:"NO_ORD_712"`
	NoSty       string `json:"NO_STY"`
	NoDepFrom   string `json:"NO_DEP_FROM"`
	NameDepFrom string `json:"NAME_DEP_FROM"`
	NoDepTo     string `json:"NO_DEP_TO"`
	NameDepTo   string `json:"NAME_DEP_TO"`
	NoPrd       string `json:"NO_PRD"`
	NamePrd     string `json:"NAME_PRD"`
	Qty         Int    `json:"QTY"`

	// только getwipdoclisttoday
	NoDed         string `json:"NO_DED,omitempty"`
	TypeName      string `json:"DED_712_TYPE_NAME,omitempty"`
	NoDepCreate   string `json:"NO_DEP_CREATE,omitempty"`
	NameDepCreate string `json:"NAME_DEP_CREATE,omitempty"`
	CreateDate    string `json:"CREATEDATE_DED,omitempty"`
	DeployDate    string `json:"DEPLOYDATE_DED,omitempty"`
}

type DocDetail struct {
	NoSiz     string `json:"NO_SIZ"`
	NoCol     string `json:"NO_COL"`
	NameCol   string `json:"NAME_COL"`
	QtyRemain Int    `json:"QTY_REMAIN"`
	QtyInOut  Int    `json:"QTY_IN_OUT"`
}

// DetailQuery — параметры getwipdocdetail. NoDed пустой для нового
// документа и заполнен для уже записанного сегодня.
type DetailQuery struct {
	NoDed    string
	NoDep    string
	NoLot    string
	NoOrd712 string
	Stage    int
}

type MasterInput struct {
	Username string
	NoOrd    string
	NoOrd712 string
	NoLot    string
	NoDep    string
	NoDepTo  string
	NoPrd    string
	Stage    int
}

// DetailUpdate — элемент массива updates для insertwipdocdetail.
type DetailUpdate struct {
	NoCol    string `json:"noCol"`
	Quantity int    `json:"quantity"`
}
