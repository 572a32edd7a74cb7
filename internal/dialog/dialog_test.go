package dialog

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/sewman/uwip-bot/internal/domain/documents"
)

func TestGoBackOnRootIsNoop(t *testing.T) {
	s := NewStack(Home{})
	before := s
	if s.GoBack() {
		t.Fatal("GoBack on empty history must report false")
	}
	if !reflect.DeepEqual(before, s) {
		t.Fatalf("state changed: %+v -> %+v", before, s)
	}
}

func TestNavigateAndGoBack(t *testing.T) {
	s := NewStack(Home{})
	s.Navigate(DocList{Stage: documents.StageToWash})
	s.Navigate(DocDetail{Ref: documents.Ref{LotNo: "L1", Stage: 1}, Mode: documents.ModeEdit})
	if s.Depth() != 2 || s.Current().Kind() != KindDocDetail {
		t.Fatalf("depth=%d current=%v", s.Depth(), s.Current())
	}
	if !s.GoBack() || s.Current() != (DocList{Stage: documents.StageToWash}) {
		t.Fatalf("current after back = %+v", s.Current())
	}
}

func TestResetAlwaysClearsHistory(t *testing.T) {
	for depth := 0; depth < 5; depth++ {
		s := NewStack(Login{})
		for i := 0; i < depth; i++ {
			s.Navigate(DocsToday{Stage: documents.Stage(i%4 + 1)})
		}
		s.OpenDrawer()
		s.Reset(Home{})
		if s.Depth() != 0 || s.Current() != (Home{}) || s.DrawerOpen() {
			t.Fatalf("depth %d: after reset %+v", depth, s)
		}
	}
}

func TestSystemBack(t *testing.T) {
	s := NewStack(Home{})
	s.Navigate(DocList{Stage: 2})
	s.OpenDrawer()

	if got := s.SystemBack(); got != BackDrawerClosed || s.Current().Kind() != KindDocList {
		t.Fatalf("first back = %v, current %v", got, s.Current())
	}
	if got := s.SystemBack(); got != BackPopped || s.Current() != (Home{}) {
		t.Fatalf("second back = %v, current %v", got, s.Current())
	}
	if got := s.SystemBack(); got != BackUnhandled {
		t.Fatalf("third back = %v", got)
	}
}

func TestNavigateClosesDrawer(t *testing.T) {
	s := NewStack(Home{})
	s.OpenDrawer()
	s.Navigate(DocsToday{Stage: 3})
	if s.DrawerOpen() {
		t.Fatal("drawer must close on navigation")
	}
}

func TestStackJSONRoundTripKeepsParams(t *testing.T) {
	s := NewStack(Home{})
	s.Navigate(DocList{Stage: 1})
	s.Navigate(DocDetail{Ref: documents.Ref{LotNo: "L1", OrderNo712: "712", Stage: 1, ExistingID: "D055"}, Mode: documents.ModeView})
	s.OpenDrawer()

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var got Stack
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s, got) {
		t.Fatalf("round trip:\n%+v\n%+v", s, got)
	}
}

func TestUnknownScreenRejected(t *testing.T) {
	var s Stack
	if err := json.Unmarshal([]byte(`{"current":{"kind":"settings"}}`), &s); err == nil {
		t.Fatal("expected error for unknown screen")
	}
}

func TestDraftSurvivesJSON(t *testing.T) {
	p := Payload{}
	SetDraft(p, map[int]int{0: 3, 2: 7})
	raw, _ := json.Marshal(p)
	var back Payload
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if d := Draft(back); d[0] != 3 || d[2] != 7 || len(d) != 2 {
		t.Fatalf("draft = %v", d)
	}
	SetDraft(back, nil)
	if _, ok := back[KeyDraft]; ok {
		t.Fatal("empty draft must be removed")
	}
}

func TestPayloadHelpers(t *testing.T) {
	p := Payload{KeyLastMID: float64(42), KeyRemember: true, KeyAwait: string(AwaitPassword)}
	if n, ok := GetInt(p, KeyLastMID); !ok || n != 42 {
		t.Fatalf("GetInt = %d %v", n, ok)
	}
	if !GetBool(p, KeyRemember) || GetBool(p, "missing") {
		t.Fatal("GetBool")
	}
	if s, ok := GetString(p, KeyAwait); !ok || Await(s) != AwaitPassword {
		t.Fatalf("GetString = %q", s)
	}
}

func TestShownSurvivesJSON(t *testing.T) {
	p := Payload{}
	ref := documents.Ref{LotNo: "L-77", OrderNo: "O-1", FromDepNo: "D1", Stage: documents.StageFromWash, ExistingID: "D055"}
	SetShown(p, map[int]documents.Ref{8: ref})
	raw, _ := json.Marshal(p)
	var back Payload
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	got, ok := Shown(back, 8)
	if !ok || got != ref {
		t.Fatalf("shown = %+v %v", got, ok)
	}
	if _, ok := Shown(back, 0); ok {
		t.Fatal("index outside the page must not resolve")
	}
	SetShown(back, nil)
	if _, ok := Shown(back, 8); ok {
		t.Fatal("cleared snapshot must not resolve")
	}
}
