package bot

import (
	"bytes"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/i18n"
)

var exportHeader = []interface{}{
	"NO_DED", "NO_LOT", "NO_ORD", "NO_ORD_712", "NO_STY",
	"NO_DEP_FROM", "NAME_DEP_FROM", "NO_DEP_TO", "NAME_DEP_TO",
	"NO_PRD", "NAME_PRD", "QTY",
}

// buildListXLSX — список документов одним листом, первая строка — заголовок.
func buildListXLSX(sheetTitle string, items []documents.Master) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetTitle != "" {
		if err := f.SetSheetName(sheet, sheetTitle); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
		sheet = sheetTitle
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	for i, m := range items {
		excelRow := []interface{}{
			m.DocID, m.LotNo, m.OrderNo, m.OrderNo712, m.StyleNo,
			m.FromDepNo, m.FromDepName, m.ToDepNo, m.ToDepName,
			m.ProductNo, m.ProductName, m.Quantity,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sendExport отправляет список файлом Excel.
func (b *Bot) sendExport(r *req, st documents.Stage, area string, items []documents.Master) {
	data, err := buildListXLSX(fmt.Sprintf("Stage %d", st), items)
	if err != nil {
		r.log.Error("export list", "err", err)
		b.notify(r.chatID, r.p.T(i18n.ErrGeneric))
		return
	}
	name := fmt.Sprintf("uwip_%s_%d_%s.xlsx", area, st, b.docs.Now().In(b.loc).Format("20060102_150405"))
	doc := tgbotapi.NewDocument(r.chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = r.p.T(i18n.ExportCaption, st.Name())
	b.send(doc)
}
