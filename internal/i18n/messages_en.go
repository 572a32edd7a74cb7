package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, TenantAsk, "Enter customer code:")
	message.SetString(lang, TenantNotFound, "Customer «%s» not found. Check the code.")
	message.SetString(lang, TenantSaved, "Connected: %s (%s)")
	message.SetString(lang, TenantRequired, "No customer configured. Enter a customer code to continue.")

	message.SetString(lang, LoginTitle, "Sign in\nCustomer: %s")
	message.SetString(lang, LoginAskUser, "Enter username:")
	message.SetString(lang, LoginAskPassword, "Enter password (the message will be deleted):")
	message.SetString(lang, LoginFailed, "Wrong username or password.")
	message.SetString(lang, LoginWelcome, "Signed in.")

	message.SetString(lang, HomeTitle, "Hello, %s\nDepartment: %s")
	message.SetString(lang, HomeStage, "%s: remaining %d · today %d")
	message.SetString(lang, HomeDegraded, "⚠️ Some data could not be loaded.")

	message.SetString(lang, DrawerTitle, "Account: %s\nEmployee: %s\nDepartment: %s\nCustomer: %s")
	message.SetString(lang, DrawerRights, "Rights: %s")

	message.SetString(lang, ListTitle, "%s · %s – %s")
	message.SetString(lang, ListEmpty, "No documents.")
	message.SetString(lang, ListFilter, "Filter: «%s» (%d/%d)")
	message.SetString(lang, ListPage, "Page %d/%d")
	message.SetString(lang, ListAskSearch, "Enter a keyword (lot, order, style, product). Send «-» to clear:")
	message.SetString(lang, ListAskRange, "Enter a date range as dd/mm/yyyy-dd/mm/yyyy:")
	message.SetString(lang, ListBadRange, "Invalid date format.")
	message.SetString(lang, TodayTitle, "%s · today")

	message.SetString(lang, DetailHeader, "Lot: %s\nOrder: %s\nStyle: %s\nFrom: %s → %s\nProduct: %s\nQuantity: %d")
	message.SetString(lang, DetailLine, "%s / %s: remaining %d · done %d · entered %d")
	message.SetString(lang, DetailReadOnly, "👁 Read only")
	message.SetString(lang, DetailTotal, "Entered total: %d")
	message.SetString(lang, DetailAskQty, "Quantity for %s / %s (remaining %d):")
	message.SetString(lang, DetailBadQty, "Quantity must be a non-negative integer.")
	message.SetString(lang, DetailNoLines, "The document has no lines.")

	message.SetString(lang, ConfirmLogout, "Sign out %s?")
	message.SetString(lang, ConfirmChange, "Change customer? Saved configuration and sign-in will be removed.")
	message.SetString(lang, ConfirmSave, "Save the document with %d pieces in total?")

	message.SetString(lang, SaveOK, "✅ Document %s saved (%d pieces).")
	message.SetString(lang, PendingTitle, "Documents whose details were not saved:")
	message.SetString(lang, PendingEmpty, "Nothing to resend.")
	message.SetString(lang, PendingLine, "%s · lot %s · %d pcs")
	message.SetString(lang, ExportCaption, "%s list")
	message.SetString(lang, Help, "/start — start\n/home — home\n/menu — menu\n/back — back")

	message.SetString(lang, ErrQtyExceeded, "Entered quantity (%d) exceeds remaining (%d) for %s / %s.")
	message.SetString(lang, ErrNothing, "No quantity entered.")
	message.SetString(lang, ErrNetwork, "Connection error: %s\nPlease try again.")
	message.SetString(lang, ErrTimeout, "The server did not respond: %s\nPlease try again.")
	message.SetString(lang, ErrPartial, "⚠️ Document %s was created but its details were not saved. Press «Resend» to finish.")
	message.SetString(lang, ErrPermission, "You are not allowed to do this.")
	message.SetString(lang, ErrInFlight, "Saving, please wait.")
	message.SetString(lang, ErrSession, "Your session has ended. Please sign in again.")
	message.SetString(lang, ErrRejected, "The server rejected the request: %s")
	message.SetString(lang, ErrGeneric, "Something went wrong. Please try again.")
	message.SetString(lang, ErrUnknownCmd, "Unknown command. Type /help")

	message.SetString(lang, BtnLogin, "🔑 Sign in")
	message.SetString(lang, BtnRememberOn, "☑️ Remember me")
	message.SetString(lang, BtnRememberOff, "⬜ Remember me")
	message.SetString(lang, BtnChangeTenant, "🏢 Change customer")
	message.SetString(lang, BtnToday, "📅 Today")
	message.SetString(lang, BtnMenu, "☰ Menu")
	message.SetString(lang, BtnRefresh, "🔄 Refresh")
	message.SetString(lang, BtnPending, "📝 Unfinished")
	message.SetString(lang, BtnLogout, "👤 Switch user")
	message.SetString(lang, BtnClose, "✖️ Close")
	message.SetString(lang, BtnBack, "⬅️ Back")
	message.SetString(lang, BtnHome, "🏠 Home")
	message.SetString(lang, BtnYes, "✅ Confirm")
	message.SetString(lang, BtnNo, "✖️ Cancel")
	message.SetString(lang, BtnSearch, "🔍 Search")
	message.SetString(lang, BtnRange, "🗓 Date range")
	message.SetString(lang, BtnExport, "📤 Excel")
	message.SetString(lang, BtnPrev, "◀️")
	message.SetString(lang, BtnNext, "▶️")
	message.SetString(lang, BtnSave, "💾 Save")
	message.SetString(lang, BtnClear, "🧹 Clear")
	message.SetString(lang, BtnRetry, "🔁 Resend")
}
