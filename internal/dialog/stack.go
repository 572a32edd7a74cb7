package dialog

import (
	"encoding/json"
	"fmt"
)

// Stack — навигация чата: текущий экран, история и флаг бокового меню.
// Меняется только через Navigate/GoBack/Reset.
type Stack struct {
	current    Screen
	history    []Screen
	drawerOpen bool
}

func NewStack(root Screen) Stack {
	return Stack{current: root}
}

func (s Stack) Current() Screen {
	if s.current == nil {
		return Login{}
	}
	return s.current
}

func (s Stack) Depth() int       { return len(s.history) }
func (s Stack) DrawerOpen() bool { return s.drawerOpen }

// Navigate кладёт текущий экран в историю и открывает next.
func (s *Stack) Navigate(next Screen) {
	s.history = append(s.history, s.Current())
	s.current = next
	s.drawerOpen = false
}

// GoBack снимает один экран. На корне ничего не делает и возвращает false.
func (s *Stack) GoBack() bool {
	if len(s.history) == 0 {
		return false
	}
	last := len(s.history) - 1
	s.current = s.history[last]
	s.history = s.history[:last]
	return true
}

// Reset очищает историю и открывает root.
func (s *Stack) Reset(root Screen) {
	s.current = root
	s.history = nil
	s.drawerOpen = false
}

func (s *Stack) OpenDrawer()  { s.drawerOpen = true }
func (s *Stack) CloseDrawer() { s.drawerOpen = false }

// BackResult — что сделала системная кнопка «назад».
type BackResult int

const (
	BackUnhandled    BackResult = iota // истории нет, решает внешний уровень
	BackDrawerClosed                   // закрыли меню
	BackPopped                         // вернулись на экран назад
)

// SystemBack: закрыть меню, иначе снять экран, иначе — не обработано.
func (s *Stack) SystemBack() BackResult {
	if s.drawerOpen {
		s.drawerOpen = false
		return BackDrawerClosed
	}
	if s.GoBack() {
		return BackPopped
	}
	return BackUnhandled
}

type stackJSON struct {
	Current frame   `json:"current"`
	History []frame `json:"history,omitempty"`
	Drawer  bool    `json:"drawer,omitempty"`
}

func (s Stack) MarshalJSON() ([]byte, error) {
	cur, err := encodeScreen(s.Current())
	if err != nil {
		return nil, err
	}
	out := stackJSON{Current: cur, Drawer: s.drawerOpen}
	for _, h := range s.history {
		f, err := encodeScreen(h)
		if err != nil {
			return nil, err
		}
		out.History = append(out.History, f)
	}
	return json.Marshal(out)
}

func (s *Stack) UnmarshalJSON(b []byte) error {
	var in stackJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	cur, err := decodeScreen(in.Current)
	if err != nil {
		return fmt.Errorf("current screen: %w", err)
	}
	st := Stack{current: cur, drawerOpen: in.Drawer}
	for i, f := range in.History {
		h, err := decodeScreen(f)
		if err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
		st.history = append(st.history, h)
	}
	*s = st
	return nil
}
