package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Vietnamese

	message.SetString(lang, TenantAsk, "Nhập mã khách hàng:")
	message.SetString(lang, TenantNotFound, "Không tìm thấy khách hàng «%s». Kiểm tra lại mã.")
	message.SetString(lang, TenantSaved, "Đã kết nối: %s (%s)")
	message.SetString(lang, TenantRequired, "Chưa cấu hình khách hàng. Nhập mã khách hàng để tiếp tục.")

	message.SetString(lang, LoginTitle, "Đăng nhập\nĐơn vị: %s")
	message.SetString(lang, LoginAskUser, "Nhập tên đăng nhập:")
	message.SetString(lang, LoginAskPassword, "Nhập mật khẩu (tin nhắn sẽ bị xoá):")
	message.SetString(lang, LoginFailed, "Sai tên đăng nhập hoặc mật khẩu.")
	message.SetString(lang, LoginWelcome, "Đăng nhập thành công.")

	message.SetString(lang, HomeTitle, "Xin chào, %s\nBộ phận: %s")
	message.SetString(lang, HomeStage, "%s: còn %d · hôm nay %d")
	message.SetString(lang, HomeDegraded, "⚠️ Một phần dữ liệu chưa tải được.")

	message.SetString(lang, DrawerTitle, "Tài khoản: %s\nMã NV: %s\nBộ phận: %s\nKhách hàng: %s")
	message.SetString(lang, DrawerRights, "Quyền: %s")

	message.SetString(lang, ListTitle, "%s · %s – %s")
	message.SetString(lang, ListEmpty, "Không có chứng từ.")
	message.SetString(lang, ListFilter, "Lọc: «%s» (%d/%d)")
	message.SetString(lang, ListPage, "Trang %d/%d")
	message.SetString(lang, ListAskSearch, "Nhập từ khoá (lô, đơn hàng, mã hàng, sản phẩm). Gửi «-» để bỏ lọc:")
	message.SetString(lang, ListAskRange, "Nhập khoảng ngày dạng dd/mm/yyyy-dd/mm/yyyy:")
	message.SetString(lang, ListBadRange, "Sai định dạng ngày.")
	message.SetString(lang, TodayTitle, "%s · hôm nay")

	message.SetString(lang, DetailHeader, "Lô: %s\nĐơn hàng: %s\nMã hàng: %s\nTừ: %s → %s\nSản phẩm: %s\nSố lượng: %d")
	message.SetString(lang, DetailLine, "%s / %s: còn %d · đã giao %d · nhập %d")
	message.SetString(lang, DetailReadOnly, "👁 Chỉ xem")
	message.SetString(lang, DetailTotal, "Tổng nhập: %d")
	message.SetString(lang, DetailAskQty, "Nhập số lượng cho %s / %s (còn %d):")
	message.SetString(lang, DetailBadQty, "Số lượng phải là số nguyên không âm.")
	message.SetString(lang, DetailNoLines, "Chứng từ không có chi tiết.")

	message.SetString(lang, ConfirmLogout, "Đăng xuất tài khoản %s?")
	message.SetString(lang, ConfirmChange, "Đổi khách hàng? Cấu hình và đăng nhập đã lưu sẽ bị xoá.")
	message.SetString(lang, ConfirmSave, "Lưu chứng từ với tổng %d sản phẩm?")

	message.SetString(lang, SaveOK, "✅ Đã lưu chứng từ %s (%d sản phẩm).")
	message.SetString(lang, PendingTitle, "Chứng từ chưa lưu xong chi tiết:")
	message.SetString(lang, PendingEmpty, "Không có chứng từ nào cần gửi lại.")
	message.SetString(lang, PendingLine, "%s · lô %s · %d sp")
	message.SetString(lang, ExportCaption, "Danh sách %s")
	message.SetString(lang, Help, "/start — bắt đầu\n/home — trang chủ\n/menu — menu\n/back — quay lại")

	message.SetString(lang, ErrQtyExceeded, "Số lượng nhập (%d) vượt số còn lại (%d) ở %s / %s.")
	message.SetString(lang, ErrNothing, "Chưa nhập số lượng nào.")
	message.SetString(lang, ErrNetwork, "Lỗi kết nối: %s\nVui lòng thử lại.")
	message.SetString(lang, ErrTimeout, "Máy chủ không phản hồi: %s\nVui lòng thử lại.")
	message.SetString(lang, ErrPartial, "⚠️ Chứng từ %s đã được tạo nhưng chi tiết chưa lưu. Bấm «Gửi lại» để hoàn tất.")
	message.SetString(lang, ErrPermission, "Bạn không có quyền thực hiện thao tác này.")
	message.SetString(lang, ErrInFlight, "Đang lưu, vui lòng chờ.")
	message.SetString(lang, ErrSession, "Phiên đăng nhập đã hết. Vui lòng đăng nhập lại.")
	message.SetString(lang, ErrRejected, "Máy chủ từ chối: %s")
	message.SetString(lang, ErrGeneric, "Đã xảy ra lỗi. Vui lòng thử lại.")
	message.SetString(lang, ErrUnknownCmd, "Lệnh không hợp lệ. Gõ /help")

	message.SetString(lang, BtnLogin, "🔑 Đăng nhập")
	message.SetString(lang, BtnRememberOn, "☑️ Ghi nhớ")
	message.SetString(lang, BtnRememberOff, "⬜ Ghi nhớ")
	message.SetString(lang, BtnChangeTenant, "🏢 Đổi khách hàng")
	message.SetString(lang, BtnToday, "📅 Hôm nay")
	message.SetString(lang, BtnMenu, "☰ Menu")
	message.SetString(lang, BtnRefresh, "🔄 Làm mới")
	message.SetString(lang, BtnPending, "📝 Chưa hoàn tất")
	message.SetString(lang, BtnLogout, "👤 Đổi người dùng")
	message.SetString(lang, BtnClose, "✖️ Đóng")
	message.SetString(lang, BtnBack, "⬅️ Quay lại")
	message.SetString(lang, BtnHome, "🏠 Trang chủ")
	message.SetString(lang, BtnYes, "✅ Đồng ý")
	message.SetString(lang, BtnNo, "✖️ Huỷ")
	message.SetString(lang, BtnSearch, "🔍 Tìm")
	message.SetString(lang, BtnRange, "🗓 Khoảng ngày")
	message.SetString(lang, BtnExport, "📤 Excel")
	message.SetString(lang, BtnPrev, "◀️")
	message.SetString(lang, BtnNext, "▶️")
	message.SetString(lang, BtnSave, "💾 Lưu")
	message.SetString(lang, BtnClear, "🧹 Xoá nhập")
	message.SetString(lang, BtnRetry, "🔁 Gửi lại")
}
