package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"flatrent-backend/models"
)

// ExportService produces an xlsx workbook of an owner's bookings across all
// of their flats.
type ExportService struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewExportService(db *gorm.DB, log *logrus.Logger) *ExportService {
	return &ExportService{DB: db, Log: log}
}

type bookingExportRow struct {
	ReferenceCode string  `gorm:"column:reference_code"`
	FlatAddress   string  `gorm:"column:flat_address"`
	City          string  `gorm:"column:city"`
	TenantName    string  `gorm:"column:tenant_name"`
	TenantEmail   string  `gorm:"column:tenant_email"`
	StartDate     string  `gorm:"column:start_date"`
	EndDate       string  `gorm:"column:end_date"`
	Status        string  `gorm:"column:status"`
	PaidTotal     float64 `gorm:"column:paid_total"`
}

// OwnerBookingsWorkbook builds the export for one owner.
func (s *ExportService) OwnerBookingsWorkbook(ownerID uint) (*excelize.File, error) {
	var rows []bookingExportRow
	err := s.DB.Raw(`
SELECT
    b.reference_code AS reference_code,
    f.address_line   AS flat_address,
    f.city           AS city,
    u.full_name      AS tenant_name,
    u.email          AS tenant_email,
    b.start_date     AS start_date,
    b.end_date       AS end_date,
    b.status         AS status,
    COALESCE(SUM(CASE WHEN p.status = ? THEN p.amount ELSE 0 END), 0) AS paid_total
FROM bookings b
JOIN flats f ON f.id = b.flat_id
JOIN users u ON u.id = b.user_id
LEFT JOIN payments p ON p.booking_id = b.id
WHERE f.owner_id = ? AND b.deleted_at IS NULL
GROUP BY b.id, b.reference_code, f.address_line, f.city, u.full_name, u.email,
         b.start_date, b.end_date, b.status
ORDER BY b.id DESC
`, models.PaymentStatusCompleted, ownerID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings for export: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Bookings"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Reference", "Flat", "City", "Tenant", "Tenant Email",
		"Start Date", "End Date", "Status", "Paid Total",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.ReferenceCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.FlatAddress)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), row.City)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), row.TenantName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), row.TenantEmail)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), row.StartDate)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), row.EndDate)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", i+2), row.Status)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", i+2), row.PaidTotal)
	}

	s.Log.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"rows":     len(rows),
	}).Info("bookings export built")
	return f, nil
}
