package documents

import (
	"errors"
	"fmt"

	"github.com/sewman/uwip-bot/internal/wipapi"
)

var (
	ErrNothingToSave    = errors.New("no line has a positive quantity")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrLineOutOfRange   = errors.New("line index out of range")
)

// QuantityError — введено больше остатка. Сохранение целиком отклоняется.
type QuantityError struct {
	Line Line
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("size %s color %s: entered %d exceeds remaining %d",
		e.Line.SizeNo, e.Line.ColorNo, e.Line.Entered, e.Line.Remaining)
}

// Editable — правка разрешена только в режиме правки и при праве на правку.
func Editable(mode Mode, canEdit bool) bool {
	return mode == ModeEdit && canEdit
}

// SetEntered записывает введённое количество. Проверка на остаток — при сохранении.
func SetEntered(lines []Line, i, qty int) error {
	if i < 0 || i >= len(lines) {
		return ErrLineOutOfRange
	}
	if qty < 0 {
		return ErrNegativeQuantity
	}
	lines[i].Entered = qty
	return nil
}

// Validate проверяет строки и собирает массив updates для шага 2.
// В updates попадают все строки, включая нулевые.
func Validate(lines []Line) ([]wipapi.DetailUpdate, error) {
	positive := false
	updates := make([]wipapi.DetailUpdate, 0, len(lines))
	for _, l := range lines {
		if l.Entered < 0 {
			return nil, ErrNegativeQuantity
		}
		if l.Entered > l.Remaining {
			return nil, &QuantityError{Line: l}
		}
		if l.Entered > 0 {
			positive = true
		}
		updates = append(updates, wipapi.DetailUpdate{NoCol: l.ColorNo, Quantity: l.Entered})
	}
	if !positive {
		return nil, ErrNothingToSave
	}
	return updates, nil
}

// IsValidation — ошибка, которая никогда не уходит на сервер.
func IsValidation(err error) bool {
	var qe *QuantityError
	return errors.As(err, &qe) || errors.Is(err, ErrNothingToSave) || errors.Is(err, ErrNegativeQuantity)
}
