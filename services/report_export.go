package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"court_transfer_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	transferSheet = "Transfer Requests"
	logSheet      = "Log Entries"
)

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 22)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// nameMap loads id -> name for a catalogue table
func nameMap(db *gorm.DB, table string) (map[uint]string, error) {
	var rows []struct {
		ID   uint
		Name string
	}
	if err := db.Table(table).Select("id, name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Name
	}
	return out, nil
}

// ExportTransferRequests renders requests as an xlsx workbook. Timestamps are
// written in loc.
func ExportTransferRequests(db *gorm.DB, requests []models.TransferRequest, loc *time.Location) (*bytes.Buffer, error) {
	types, err := nameMap(db, models.TransferRequestType{}.TableName())
	if err != nil {
		return nil, fmt.Errorf("failed to load request types: %w", err)
	}
	courthouses, err := nameMap(db, models.Courthouse{}.TableName())
	if err != nil {
		return nil, fmt.Errorf("failed to load courthouses: %w", err)
	}

	userIDs := make([]uint, 0, len(requests))
	for _, r := range requests {
		userIDs = append(userIDs, r.UserID)
	}
	var users []models.User
	if len(userIDs) > 0 {
		if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
	}
	usersByID := make(map[uint]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", transferSheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Created", "Registration Number", "Employee", "Type", "Status", "Preferences", "Approved Courthouse", "Attachments", "Description"}
	if err := writeHeader(f, transferSheet, headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range requests {
		owner := usersByID[r.UserID]

		prefs := make([]string, 0, len(r.Preferences))
		approved := ""
		for _, p := range r.Preferences {
			prefs = append(prefs, fmt.Sprintf("%d. %s", p.PreferenceOrder, courthouses[p.CourthouseID]))
			if r.ApprovedCourthousePreferenceID != nil && *r.ApprovedCourthousePreferenceID == p.ID {
				approved = courthouses[p.CourthouseID]
			}
		}

		values := []interface{}{
			r.ID,
			FormatLocal(r.CreatedAt, loc),
			owner.RegistrationNumber,
			owner.FullName(),
			types[r.TypeID],
			models.StatusName(r.StatusID),
			strings.Join(prefs, "; "),
			approved,
			len(r.Sources),
			r.Description,
		}
		if err := writeRow(f, transferSheet, i+2, values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ExportLogEntries renders audit entries as an xlsx workbook
func ExportLogEntries(entries []models.LogEntry, loc *time.Location) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", logSheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Date", "Level", "Registration Number", "Controller", "Action", "Message", "Exception", "IP Address"}
	if err := writeHeader(f, logSheet, headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		exception := ""
		if e.Exception != nil {
			exception = *e.Exception
		}
		values := []interface{}{
			e.ID,
			FormatLocal(e.Date, loc),
			e.Level,
			e.RegistrationNumber,
			e.ControllerName,
			e.ActionName,
			e.Message,
			exception,
			e.IPAddress,
		}
		if err := writeRow(f, logSheet, i+2, values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}
