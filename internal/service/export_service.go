package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/repository"
)

// ── export errors ──

var (
	ErrExportNoSlots      = errors.New("class has no timetable to export")
	ErrExportGenerateFail = errors.New("failed to generate the Excel file")
)

// ExportService timetable export.
//
// The workbook has one sheet: one row per session number, one column per day
// that holds at least one slot (Monday first), each cell "module / trainer / room".
type ExportService interface {
	ExportClassTimetable(ctx context.Context, classID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportClassTimetable(ctx context.Context, classID string) (*bytes.Buffer, string, error) {
	class, err := s.repo.Directory.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", &ResourceNotFoundError{Resource: model.ResourceClass, ID: classID}
		}
		s.logger.Error("get class failed", zap.String("class_id", classID), zap.Error(err))
		return nil, "", err
	}

	slots, err := s.repo.Slot.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("list class slots failed", zap.String("class_id", classID), zap.Error(err))
		return nil, "", err
	}
	if len(slots) == 0 {
		return nil, "", ErrExportNoSlots
	}

	// index: session number × day → cell text
	type cellKey struct {
		session int
		day     model.Weekday
	}
	cells := make(map[cellKey]string, len(slots))
	daySet := make(map[model.Weekday]bool)
	sessionSet := make(map[int]bool)
	sessionTimes := make(map[int]string)
	for i := range slots {
		sl := &slots[i]
		key := cellKey{session: sl.SessionNumber, day: sl.DayOfWeek}
		text := slotCellText(sl)
		if prev, ok := cells[key]; ok {
			text = prev + "\n" + text
		}
		cells[key] = text
		daySet[sl.DayOfWeek] = true
		sessionSet[sl.SessionNumber] = true
		if _, ok := sessionTimes[sl.SessionNumber]; !ok && sl.SessionTemplate != nil {
			sessionTimes[sl.SessionNumber] = sl.SessionTemplate.StartTime + "-" + sl.SessionTemplate.EndTime
		}
	}

	var days []model.Weekday
	for d := model.Monday; d <= model.Sunday; d++ {
		if daySet[d] {
			days = append(days, d)
		}
	}
	sessions := make([]int, 0, len(sessionSet))
	for n := range sessionSet {
		sessions = append(sessions, n)
	}
	sort.Ints(sessions)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetNameFor(class.Name)
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 14)
	for i := range days {
		col := colName(2 + i)
		f.SetColWidth(sheetName, col, col, 32)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	bodyStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})

	// title
	lastCol := colName(1 + len(days))
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s - weekly timetable", class.Name))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", cell(lastCol, 1), headerStyle)

	// header
	f.SetCellValue(sheetName, cell("A", 2), "Session")
	f.SetCellValue(sheetName, cell("B", 2), "Time")
	for i, d := range days {
		f.SetCellValue(sheetName, cell(colName(2+i), 2), d.String())
	}
	f.SetCellStyle(sheetName, cell("A", 2), cell(lastCol, 2), headerStyle)

	row := 3
	for _, n := range sessions {
		f.SetCellValue(sheetName, cell("A", row), n)
		f.SetCellValue(sheetName, cell("B", row), sessionTimes[n])
		for i, d := range days {
			text, ok := cells[cellKey{session: n, day: d}]
			if !ok {
				text = "-"
			}
			f.SetCellValue(sheetName, cell(colName(2+i), row), text)
		}
		row++
	}
	if row > 3 {
		f.SetCellStyle(sheetName, cell("A", 3), cell(lastCol, row-1), bodyStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write Excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("timetable_%s.xlsx", class.Name)
	return buf, filename, nil
}

// slotCellText "module / trainer / room", falling back to identifiers.
func slotCellText(sl *model.Slot) string {
	module := sl.ModuleID
	if sl.Module != nil {
		module = sl.Module.Name
	}
	trainer := sl.TrainerID
	if sl.Trainer != nil {
		trainer = strings.TrimSpace(sl.Trainer.FirstName + " " + sl.Trainer.LastName)
	}
	room := sl.RoomID
	if sl.Room != nil {
		room = sl.Room.Name
	}
	return module + " / " + trainer + " / " + room
}

// sheetNameFor strips characters Excel refuses in sheet names.
func sheetNameFor(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "Sheet1"
	}
	if r := []rune(cleaned); len(r) > 31 {
		cleaned = string(r[:31])
	}
	return cleaned
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
