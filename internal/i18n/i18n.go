// Package i18n — тексты интерфейса (vi, en) и локальный формат чисел.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedTags = []language.Tag{
	language.Vietnamese,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Default — язык по умолчанию.
func Default() language.Tag { return language.Vietnamese }

// Parse сопоставляет код языка (из конфига или Telegram) с поддерживаемыми.
// Пустой или неизвестный код — fallback.
func Parse(code string, fallback language.Tag) language.Tag {
	code = strings.TrimSpace(code)
	if code == "" {
		return fallback
	}
	tag, err := language.Parse(code)
	if err != nil {
		return fallback
	}
	_, idx, conf := tagMatcher.Match(tag)
	if conf == language.No {
		return fallback
	}
	return supportedTags[idx]
}

// Printer — тексты на одном языке.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

func New(tag language.Tag) *Printer {
	return &Printer{tag: tag, p: message.NewPrinter(tag)}
}

func (p *Printer) Tag() language.Tag { return p.tag }

// T форматирует сообщение по ключу; числа %d получают разделители локали.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Num — целое с разделителями разрядов («1.234.567» для vi).
func (p *Printer) Num(n int) string {
	return p.p.Sprintf("%d", n)
}
