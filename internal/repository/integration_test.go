//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hajjjaj37/gestion-pole-Dia/config"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/dto"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/repository"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/service"
	"github.com/Hajjjaj37/gestion-pole-Dia/pkg/database"
	pkgerrors "github.com/Hajjjaj37/gestion-pole-Dia/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var pgDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=gestion_pole_test sslmode=disable TimeZone=UTC"
	}

	var err error
	pgDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot connect to the test database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := pgDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// resetPG empties the slot table and reseeds the directory.
func resetPG(t *testing.T) {
	t.Helper()
	err := pgDB.Exec("TRUNCATE timetable_slots, trainers, modules, rooms, classes, session_templates CASCADE").Error
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	seedDirectory(t, pgDB)
}

// ═══════════════════════════════════════════════════════════
// Slot store against PostgreSQL
// ═══════════════════════════════════════════════════════════

func TestPG_PartialUniqueIndexes(t *testing.T) {
	resetPG(t)
	repo := repository.NewRepository(pgDB)
	ctx := context.Background()

	first := newSlot(model.Monday, "T1", "F1", "C1", "R1")
	if err := repo.Slot.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name string
		slot *model.Slot
	}{
		{"same class", newSlot(model.Monday, "T1", "F2", "C1", "R2")},
		{"same trainer", newSlot(model.Monday, "T1", "F1", "C2", "R2")},
		{"same room", newSlot(model.Monday, "T1", "F2", "C2", "R1")},
	}
	for _, tt := range tests {
		err := repo.Slot.Create(ctx, tt.slot)
		if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
			t.Errorf("%s: expected ErrDuplicateKey, got %v", tt.name, err)
		}
	}

	// soft-deleted rows no longer hold the occupation
	if err := repo.Slot.Delete(ctx, first.SlotID, "admin-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Slot.Create(ctx, newSlot(model.Monday, "T1", "F2", "C2", "R1")); err != nil {
		t.Errorf("slot should be free after delete, got %v", err)
	}
}

func TestPG_ConcurrentCreatesOnOneRoom(t *testing.T) {
	resetPG(t)
	cfg := config.Default()
	svc := service.NewTimetableService(cfg, repository.NewRepository(pgDB), service.NewLocalLocker(), zap.NewNop())
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i, class := range []string{"C1", "C2"} {
		wg.Add(1)
		go func(trainer, class string) {
			defer wg.Done()
			_, err := svc.Create(ctx, &dto.CreateSlotRequest{
				Day: "MONDAY", SessionTemplateID: "T1", TrainerID: trainer,
				ModuleID: "M1", ClassID: class, RoomID: "R1",
			}, "admin-1")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, service.ErrSlotConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}([]string{"F1", "F2"}[i], class)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one winner, got %d", succeeded)
	}
}

func TestPG_CreateWeekRollsBackOnPrecondition(t *testing.T) {
	resetPG(t)
	repo := repository.NewRepository(pgDB)
	svc := service.NewTimetableService(config.Default(), repo, service.NewLocalLocker(), zap.NewNop())
	ctx := context.Background()

	var rows []dto.ProposedAssignment
	for _, d := range []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"} {
		rows = append(rows, dto.ProposedAssignment{Day: d, SessionTemplateID: "T1", TrainerID: "F1", ModuleID: "M1", ClassID: "C1", RoomID: "R1"})
	}
	// same template twice on Monday: the second row conflicts on every axis
	rows = append(rows, dto.ProposedAssignment{Day: "MONDAY", SessionTemplateID: "T1", TrainerID: "F1", ModuleID: "M1", ClassID: "C1", RoomID: "R1"})

	resp, err := svc.CreateWeek(ctx, "C1", rows, "admin-1")
	if err != nil {
		t.Fatalf("CreateWeek: %v", err)
	}
	if len(resp.Created) != 5 || len(resp.Warnings) != 1 {
		t.Errorf("expected 5 created and 1 warning, got %d/%v", len(resp.Created), resp.Warnings)
	}

	if _, err := svc.CreateWeek(ctx, "C1", rows, "admin-1"); !errors.Is(err, service.ErrAlreadyScheduled) {
		t.Errorf("expected ErrAlreadyScheduled, got %v", err)
	}
	slots, _ := repo.Slot.ListByClass(ctx, "C1")
	if len(slots) != 5 {
		t.Errorf("rejected batch must not write, got %d slots", len(slots))
	}
}
