package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Hajjjaj37/gestion-pole-Dia/config"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/repository"
)

// ── test helpers ──

func setupTestExportService(t *testing.T) (ExportService, TimetableService, *mockSlotRepo) {
	t.Helper()
	slots := newMockSlotRepo()
	repo := &repository.Repository{Slot: slots, Directory: newMockDirectoryRepo().seed()}
	logger := zap.NewNop()
	return NewExportService(repo, logger), NewTimetableService(config.Default(), repo, NewLocalLocker(), logger), slots
}

// ── ExportClassTimetable ──

func TestExportService_ClassNotFound(t *testing.T) {
	svc, _, _ := setupTestExportService(t)

	_, _, err := svc.ExportClassTimetable(context.Background(), "C9")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestExportService_NoSlots(t *testing.T) {
	svc, _, _ := setupTestExportService(t)

	_, _, err := svc.ExportClassTimetable(context.Background(), "C1")
	if !errors.Is(err, ErrExportNoSlots) {
		t.Errorf("expected ErrExportNoSlots, got %v", err)
	}
}

func TestExportService_Success(t *testing.T) {
	svc, timetable, _ := setupTestExportService(t)
	ctx := context.Background()

	mustCreate(t, timetable, slotReq("WEDNESDAY", "T1", "F1", "C1", "R1"))
	second := slotReq("MONDAY", "T2", "F2", "C1", "R2")
	second.SessionNumber = 2
	mustCreate(t, timetable, second)
	// other classes stay out of the workbook
	mustCreate(t, timetable, slotReq("FRIDAY", "T1", "F3", "C2", "R3"))

	buf, filename, err := svc.ExportClassTimetable(ctx, "C1")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if filename != "timetable_Class C1.xlsx" {
		t.Errorf("unexpected filename %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("workbook unreadable: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Class C1" {
		t.Fatalf("expected one sheet named after the class, got %v", sheets)
	}
	sheet := sheets[0]

	expect := map[string]string{
		"A1": "Class C1 - weekly timetable",
		"A2": "Session",
		"B2": "Time",
		"C2": "MONDAY",
		"D2": "WEDNESDAY",
		"E2": "",
		"A3": "1",
		"B3": "08:30-10:00",
		"C3": "-",
		"D3": "Module M1 / F1 Trainer / Room R1",
		"A4": "2",
		"B4": "10:30-12:00",
		"C4": "Module M1 / F2 Trainer / Room R2",
		"D4": "-",
	}
	for cell, want := range expect {
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s: expected %q, got %q", cell, want, got)
		}
	}
}

func TestSheetNameFor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"DEV 101", "DEV 101"},
		{"TS/DI [2026]", "TS-DI -2026-"},
		{"   ", "Sheet1"},
		{"A very long class name that Excel cannot hold", "A very long class name that Exc"},
	}
	for _, tt := range tests {
		if got := sheetNameFor(tt.in); got != tt.want {
			t.Errorf("sheetNameFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
