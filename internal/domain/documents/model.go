package documents

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sewman/uwip-bot/internal/wipapi"
)

// Stage — этап движения продукции.
type Stage int

const (
	StageToWash     Stage = 1
	StageFromWash   Stage = 2
	StageIronIntake Stage = 3
	StageIronFinish Stage = 4
)

var Stages = []Stage{StageToWash, StageFromWash, StageIronIntake, StageIronFinish}

var stageNames = map[Stage]string{
	StageToWash:     "Đi giặt",
	StageFromWash:   "Giặt về",
	StageIronIntake: "Ghi nhận Là",
	StageIronFinish: "Là giao HT",
}

func (s Stage) Valid() bool { return s >= StageToWash && s <= StageIronFinish }

func (s Stage) Name() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "?"
}

// Index — позиция этапа в массивах счётчиков [4]int.
func (s Stage) Index() int { return int(s) - 1 }

func ParseStage(v string) (Stage, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || !Stage(n).Valid() {
		return 0, fmt.Errorf("unknown stage %q", v)
	}
	return Stage(n), nil
}

// Master — шапка документа передачи.
type Master struct {
	LotNo       string
	OrderNo     string
	OrderNo712  string
	StyleNo     string
	FromDepNo   string
	FromDepName string
	ToDepNo     string
	ToDepName   string
	ProductNo   string
	ProductName string
	Quantity    int

	// только для документов, записанных сегодня
	DocID          string
	TypeName       string
	CreatorDepName string
	CreatedAt      string
	DeployedAt     string
}

func masterFromWire(m wipapi.DocMaster) Master {
	return Master{
		LotNo:          m.NoLot,
		OrderNo:        m.NoOrd,
		OrderNo712:     m.NoOrd712,
		StyleNo:        m.NoSty,
		FromDepNo:      m.NoDepFrom,
		FromDepName:    m.NameDepFrom,
		ToDepNo:        m.NoDepTo,
		ToDepName:      m.NameDepTo,
		ProductNo:      m.NoPrd,
		ProductName:    m.NamePrd,
		Quantity:       int(m.Qty),
		DocID:          m.NoDed,
		TypeName:       m.TypeName,
		CreatorDepName: m.NameDepCreate,
		CreatedAt:      m.CreateDate,
		DeployedAt:     m.DeployDate,
	}
}

// Line — строка размер/цвет. Entered живёт только во время правки.
type Line struct {
	SizeNo      string
	ColorNo     string
	ColorName   string
	Remaining   int
	Transferred int
	Entered     int
}

func lineFromWire(d wipapi.DocDetail) Line {
	return Line{
		SizeNo:      d.NoSiz,
		ColorNo:     d.NoCol,
		ColorName:   d.NameCol,
		Remaining:   int(d.QtyRemain),
		Transferred: int(d.QtyInOut),
	}
}

type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

// Ref — параметры открытия карточки документа. Пустой ExistingID — новый
// документ, непустой — уже записанный сегодня.
type Ref struct {
	LotNo      string `json:"lot"`
	OrderNo    string `json:"ord"`
	OrderNo712 string `json:"ord712"`
	StyleNo    string `json:"sty,omitempty"`
	FromDepNo  string `json:"dep"`
	ToDepNo    string `json:"dep_to"`
	ProductNo  string `json:"prd"`
	Stage      Stage  `json:"stage"`
	ExistingID string `json:"ded,omitempty"`
}

// RefForEntry — документ из общего списка открывается как новый.
func RefForEntry(m Master, stage Stage) Ref {
	return Ref{
		LotNo:      m.LotNo,
		OrderNo:    m.OrderNo,
		OrderNo712: m.OrderNo712,
		StyleNo:    m.StyleNo,
		FromDepNo:  m.FromDepNo,
		ToDepNo:    m.ToDepNo,
		ProductNo:  m.ProductNo,
		Stage:      stage,
	}
}

// RefForRecorded — документ из «сегодня» открывается по своему номеру.
func RefForRecorded(m Master, stage Stage) Ref {
	r := RefForEntry(m, stage)
	r.ExistingID = m.DocID
	return r
}

func (r Ref) query() wipapi.DetailQuery {
	return wipapi.DetailQuery{
		NoDed:    r.ExistingID,
		NoDep:    r.FromDepNo,
		NoLot:    r.LotNo,
		NoOrd712: r.OrderNo712,
		Stage:    int(r.Stage),
	}
}

// Detail — загруженная карточка документа.
type Detail struct {
	Ref      Ref
	Master   Master
	Lines    []Line
	Mode     Mode
	Editable bool
}

// Total — сумма введённых количеств.
func (d Detail) Total() int {
	n := 0
	for _, l := range d.Lines {
		n += l.Entered
	}
	return n
}

// DateRange — период списка, границы включительно, по дням.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Today — период «сегодня..сегодня» в часовом поясе now.
func Today(now time.Time) DateRange {
	return DateRange{From: now, To: now}
}

// Filter — поиск по лоту, заказу, модели и изделию без учёта регистра.
func Filter(list []Master, query string) []Master {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]Master, 0, len(list))
	for _, m := range list {
		for _, f := range []string{m.LotNo, m.OrderNo, m.OrderNo712, m.StyleNo, m.ProductName, m.ProductNo} {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
