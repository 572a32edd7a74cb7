package bot

import (
	"errors"
	"strings"

	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/i18n"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

// Kind — класс ошибки для пользователя.
type Kind int

const (
	KindNone Kind = iota
	KindConfiguration
	KindAuthentication
	KindValidation
	KindNetwork
	KindPartialSave
	KindPermission
	KindInFlight
	KindSession
	KindUnknown
)

func classify(err error) Kind {
	var pe *documents.PartialSaveError
	switch {
	case err == nil:
		return KindNone
	// частичное сохранение проверяем раньше сетевой ошибки: она внутри
	case errors.As(err, &pe):
		return KindPartialSave
	case errors.Is(err, tenant.ErrNotFound), errors.Is(err, tenant.ErrEmptyCode), errors.Is(err, session.ErrTenantRequired):
		return KindConfiguration
	case errors.Is(err, session.ErrAuthFailed), wipapi.IsAuth(err),
		errors.Is(err, session.ErrEmptyUsername), errors.Is(err, session.ErrEmptyPassword):
		return KindAuthentication
	case documents.IsValidation(err), errors.Is(err, documents.ErrLineOutOfRange):
		return KindValidation
	case errors.Is(err, documents.ErrReadOnly):
		return KindPermission
	case errors.Is(err, documents.ErrSaveInFlight):
		return KindInFlight
	case errors.Is(err, session.ErrNotAuthenticated):
		return KindSession
	case wipapi.IsNetwork(err):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// errorText — короткое сообщение для пользователя.
func errorText(p *i18n.Printer, err error) string {
	switch classify(err) {
	case KindPartialSave:
		var pe *documents.PartialSaveError
		errors.As(err, &pe)
		return p.T(i18n.ErrPartial, pe.DocID)
	case KindConfiguration:
		if errors.Is(err, session.ErrTenantRequired) {
			return p.T(i18n.TenantRequired)
		}
		return p.T(i18n.TenantNotFound, tenantCode(err))
	case KindAuthentication:
		return p.T(i18n.LoginFailed)
	case KindValidation:
		var qe *documents.QuantityError
		if errors.As(err, &qe) {
			return p.T(i18n.ErrQtyExceeded, qe.Line.Entered, qe.Line.Remaining, qe.Line.SizeNo, firstNonEmpty(qe.Line.ColorName, qe.Line.ColorNo))
		}
		if errors.Is(err, documents.ErrNothingToSave) {
			return p.T(i18n.ErrNothing)
		}
		return p.T(i18n.DetailBadQty)
	case KindPermission:
		return p.T(i18n.ErrPermission)
	case KindInFlight:
		return p.T(i18n.ErrInFlight)
	case KindSession:
		return p.T(i18n.ErrSession)
	case KindNetwork:
		if wipapi.IsTimeout(err) {
			return p.T(i18n.ErrTimeout, err.Error())
		}
		return p.T(i18n.ErrNetwork, err.Error())
	default:
		var re *wipapi.RejectedError
		if errors.As(err, &re) && re.Message != "" {
			return p.T(i18n.ErrRejected, re.Message)
		}
		return p.T(i18n.ErrGeneric)
	}
}

// tenantCode достаёт введённый код из "...customer not found: CODE".
func tenantCode(err error) string {
	msg := err.Error()
	prefix := tenant.ErrNotFound.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return ""
}
