package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	pkgerrors "github.com/Hajjjaj37/gestion-pole-Dia/pkg/errors"
)

// ── Mock SlotRepository ──
//
// In-memory slot store. With enforceUnique it rejects writes the way the
// partial unique indexes do.

type mockSlotRepo struct {
	mu            sync.Mutex
	slots         map[string]*model.Slot
	seq           int
	enforceUnique bool
	existsCalls   int
	failWith      error // returned by every write when set
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[string]*model.Slot), enforceUnique: true}
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	if m.enforceUnique && m.collides(slot, "") {
		return pkgerrors.ErrDuplicateKey
	}

	m.seq++
	if slot.SlotID == "" {
		slot.SlotID = fmt.Sprintf("slot-%d", m.seq)
	}
	if slot.Version == 0 {
		slot.Version = 1
	}
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt

	stored := *slot
	m.slots[slot.SlotID] = &stored
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id string) (*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.slots[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) Update(_ context.Context, slot *model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	stored, ok := m.slots[slot.SlotID]
	if !ok || stored.Version != slot.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if m.enforceUnique && m.collides(slot, slot.SlotID) {
		return pkgerrors.ErrDuplicateKey
	}

	slot.Version++
	slot.UpdatedAt = time.Now()
	c := *slot
	m.slots[slot.SlotID] = &c
	return nil
}

func (m *mockSlotRepo) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.slots, id)
	return nil
}

func (m *mockSlotRepo) DeleteByClass(_ context.Context, classID string, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.slots {
		if s.ClassID == classID {
			delete(m.slots, id)
			n++
		}
	}
	return n, nil
}

func (m *mockSlotRepo) List(_ context.Context) ([]model.Slot, error) {
	return m.filter(func(*model.Slot) bool { return true }, func(a, b *model.Slot) bool {
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.SessionNumber < b.SessionNumber
	}), nil
}

func (m *mockSlotRepo) ListByDay(_ context.Context, day model.Weekday) ([]model.Slot, error) {
	return m.filter(func(s *model.Slot) bool { return s.DayOfWeek == day }, bySessionNumber), nil
}

func (m *mockSlotRepo) ListByClass(_ context.Context, classID string) ([]model.Slot, error) {
	return m.filter(func(s *model.Slot) bool { return s.ClassID == classID }, func(a, b *model.Slot) bool {
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.SessionNumber < b.SessionNumber
	}), nil
}

func (m *mockSlotRepo) ListByClassAndDay(_ context.Context, classID string, day model.Weekday) ([]model.Slot, error) {
	return m.filter(func(s *model.Slot) bool { return s.ClassID == classID && s.DayOfWeek == day }, bySessionNumber), nil
}

func (m *mockSlotRepo) ExistsByClass(_ context.Context, classID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.slots {
		if s.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSlotRepo) ExistsClassConflict(_ context.Context, day model.Weekday, templateID, classID, excludeSlotID string) (bool, error) {
	return m.any(excludeSlotID, func(s *model.Slot) bool {
		return s.DayOfWeek == day && s.SessionTemplateID == templateID && s.ClassID == classID
	}), nil
}

func (m *mockSlotRepo) ExistsTrainerConflict(_ context.Context, day model.Weekday, templateID, trainerID, excludeSlotID string) (bool, error) {
	return m.any(excludeSlotID, func(s *model.Slot) bool {
		return s.DayOfWeek == day && s.SessionTemplateID == templateID && s.TrainerID == trainerID
	}), nil
}

func (m *mockSlotRepo) ExistsRoomConflict(_ context.Context, day model.Weekday, templateID, roomID, excludeSlotID string) (bool, error) {
	return m.any(excludeSlotID, func(s *model.Slot) bool {
		return s.DayOfWeek == day && s.SessionTemplateID == templateID && s.RoomID == roomID
	}), nil
}

func (m *mockSlotRepo) any(excludeSlotID string, match func(*model.Slot) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.existsCalls++
	for id, s := range m.slots {
		if id != excludeSlotID && match(s) {
			return true
		}
	}
	return false
}

// collides must be called with mu held.
func (m *mockSlotRepo) collides(slot *model.Slot, excludeSlotID string) bool {
	for id, s := range m.slots {
		if id == excludeSlotID || s.DayOfWeek != slot.DayOfWeek || s.SessionTemplateID != slot.SessionTemplateID {
			continue
		}
		if s.ClassID == slot.ClassID || s.TrainerID == slot.TrainerID || s.RoomID == slot.RoomID {
			return true
		}
	}
	return false
}

func (m *mockSlotRepo) filter(keep func(*model.Slot) bool, less func(a, b *model.Slot) bool) []model.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []model.Slot{}
	for _, s := range m.slots {
		if keep(s) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return less(&result[i], &result[j]) })
	return result
}

func (m *mockSlotRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

func bySessionNumber(a, b *model.Slot) bool {
	if a.SessionNumber != b.SessionNumber {
		return a.SessionNumber < b.SessionNumber
	}
	return a.ClassID < b.ClassID
}

// ── Mock DirectoryRepository ──

type mockDirectoryRepo struct {
	trainers  map[string]*model.Trainer
	modules   map[string]*model.Module
	rooms     map[string]*model.Room
	classes   map[string]*model.Class
	templates map[string]*model.SessionTemplate
}

func newMockDirectoryRepo() *mockDirectoryRepo {
	return &mockDirectoryRepo{
		trainers:  make(map[string]*model.Trainer),
		modules:   make(map[string]*model.Module),
		rooms:     make(map[string]*model.Room),
		classes:   make(map[string]*model.Class),
		templates: make(map[string]*model.SessionTemplate),
	}
}

// seed fills the directory with trainers F1-F4, modules M1-M3, rooms R1-R4,
// classes C1-C3 and session templates T1-T4.
func (m *mockDirectoryRepo) seed() *mockDirectoryRepo {
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("F%d", i)
		m.trainers[id] = &model.Trainer{TrainerID: id, LastName: "Trainer", FirstName: id, Email: id + "@pole.test"}
		rid := fmt.Sprintf("R%d", i)
		m.rooms[rid] = &model.Room{RoomID: rid, Name: "Room " + rid, Number: fmt.Sprintf("10%d", i), Capacity: 30}
		tid := fmt.Sprintf("T%d", i)
		m.templates[tid] = &model.SessionTemplate{
			SessionTemplateID: tid,
			Name:              "Session " + tid,
			Number:            i,
			StartTime:         fmt.Sprintf("%02d:30", 6+2*i),
			EndTime:           fmt.Sprintf("%02d:00", 8+2*i),
		}
	}
	for i := 1; i <= 3; i++ {
		mid := fmt.Sprintf("M%d", i)
		m.modules[mid] = &model.Module{ModuleID: mid, Name: "Module " + mid, DurationHours: 40}
		cid := fmt.Sprintf("C%d", i)
		m.classes[cid] = &model.Class{ClassID: cid, Name: "Class " + cid}
	}
	return m
}

func (m *mockDirectoryRepo) Exists(_ context.Context, kind model.ResourceKind, id string) (bool, error) {
	var ok bool
	switch kind {
	case model.ResourceTrainer:
		_, ok = m.trainers[id]
	case model.ResourceModule:
		_, ok = m.modules[id]
	case model.ResourceRoom:
		_, ok = m.rooms[id]
	case model.ResourceClass:
		_, ok = m.classes[id]
	case model.ResourceSessionTemplate:
		_, ok = m.templates[id]
	default:
		return false, fmt.Errorf("unknown resource kind %q", kind)
	}
	return ok, nil
}

func (m *mockDirectoryRepo) GetTrainer(_ context.Context, id string) (*model.Trainer, error) {
	return lookup(m.trainers, id)
}

func (m *mockDirectoryRepo) GetModule(_ context.Context, id string) (*model.Module, error) {
	return lookup(m.modules, id)
}

func (m *mockDirectoryRepo) GetRoom(_ context.Context, id string) (*model.Room, error) {
	return lookup(m.rooms, id)
}

func (m *mockDirectoryRepo) GetClass(_ context.Context, id string) (*model.Class, error) {
	return lookup(m.classes, id)
}

func (m *mockDirectoryRepo) GetSessionTemplate(_ context.Context, id string) (*model.SessionTemplate, error) {
	return lookup(m.templates, id)
}

func lookup[T any](records map[string]*T, id string) (*T, error) {
	if v, ok := records[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock Locker ──

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (busyLocker) Unlock(context.Context, string) error                      { return nil }
