package i18n

// Ключи сообщений.
const (
	TenantAsk      = "tenant.ask"
	TenantNotFound = "tenant.not_found"
	TenantSaved    = "tenant.saved"
	TenantRequired = "tenant.required"

	LoginTitle       = "login.title"
	LoginAskUser     = "login.ask_user"
	LoginAskPassword = "login.ask_password"
	LoginFailed      = "login.failed"
	LoginWelcome     = "login.welcome"

	HomeTitle    = "home.title"
	HomeStage    = "home.stage"
	HomeDegraded = "home.degraded"

	DrawerTitle  = "drawer.title"
	DrawerRights = "drawer.rights"

	ListTitle     = "list.title"
	ListEmpty     = "list.empty"
	ListFilter    = "list.filter"
	ListPage      = "list.page"
	ListAskSearch = "list.ask_search"
	ListAskRange  = "list.ask_range"
	ListBadRange  = "list.bad_range"
	TodayTitle    = "today.title"

	DetailHeader   = "detail.header"
	DetailLine     = "detail.line"
	DetailReadOnly = "detail.read_only"
	DetailTotal    = "detail.total"
	DetailAskQty   = "detail.ask_qty"
	DetailBadQty   = "detail.bad_qty"
	DetailNoLines  = "detail.no_lines"

	ConfirmLogout = "confirm.logout"
	ConfirmChange = "confirm.change"
	ConfirmSave   = "confirm.save"

	SaveOK        = "save.ok"
	PendingTitle  = "pending.title"
	PendingEmpty  = "pending.empty"
	PendingLine   = "pending.line"
	ExportCaption = "export.caption"
	Help          = "help"

	ErrQtyExceeded = "err.qty_exceeded"
	ErrNothing     = "err.nothing"
	ErrNetwork     = "err.network"
	ErrTimeout     = "err.timeout"
	ErrPartial     = "err.partial"
	ErrPermission  = "err.permission"
	ErrInFlight    = "err.in_flight"
	ErrSession     = "err.session"
	ErrGeneric     = "err.generic"
	ErrRejected    = "err.rejected"
	ErrUnknownCmd  = "err.unknown_cmd"

	BtnLogin        = "btn.login"
	BtnRememberOn   = "btn.remember_on"
	BtnRememberOff  = "btn.remember_off"
	BtnChangeTenant = "btn.change_tenant"
	BtnToday        = "btn.today"
	BtnMenu         = "btn.menu"
	BtnRefresh      = "btn.refresh"
	BtnPending      = "btn.pending"
	BtnLogout       = "btn.logout"
	BtnClose        = "btn.close"
	BtnBack         = "btn.back"
	BtnHome         = "btn.home"
	BtnYes          = "btn.yes"
	BtnNo           = "btn.no"
	BtnSearch       = "btn.search"
	BtnRange        = "btn.range"
	BtnExport       = "btn.export"
	BtnPrev         = "btn.prev"
	BtnNext         = "btn.next"
	BtnSave         = "btn.save"
	BtnClear        = "btn.clear"
	BtnRetry        = "btn.retry"
)
