package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	bookingDomain "github.com/shareloop/service-share/internal/domain/booking"
)

const exportSheet = "Bookings"

// ExportWorkbook renders every booking into an xlsx workbook for offline
// review. The caller owns the returned file and must Close it.
func (s *BookingService) ExportWorkbook(ctx context.Context) (*excelize.File, error) {
	bookings, err := s.bookings.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]int64, 0, len(bookings))
	seen := make(map[int64]struct{}, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.ItemID()]; ok {
			continue
		}
		seen[b.ItemID()] = struct{}{}
		itemIDs = append(itemIDs, b.ItemID())
	}
	items, err := s.items.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	itemNames := make(map[int64]string, len(items))
	for _, it := range items {
		itemNames[it.ID] = it.Name
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"ID", "Item", "Booker ID", "Start", "End", "Status", "Created"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, b := range bookings {
		if err := s.writeExportRow(f, row+2, b, itemNames); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "B", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "D", "E", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "G", "G", 22); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *BookingService) writeExportRow(f *excelize.File, row int, b *bookingDomain.Booking, itemNames map[int64]string) error {
	itemName := itemNames[b.ItemID()]
	if itemName == "" {
		itemName = strconv.FormatInt(b.ItemID(), 10)
	}
	values := []interface{}{
		b.ID(),
		itemName,
		b.BookerID(),
		b.Start().Format("2006-01-02 15:04:05"),
		b.End().Format("2006-01-02 15:04:05"),
		b.Status().String(),
		b.CreatedAt().Format("2006-01-02 15:04:05"),
	}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
