package scheduler

import (
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// ── 内存版 ShiftStore，以 (employee_id, date) 为唯一键 ──

type memShiftStore struct {
	shifts map[domain.ShiftKey]*domain.ShiftRecord
	// precision 不为零时按该精度保存 updated_at，模拟 timestamptz
	precision time.Duration

	reads  int
	writes int

	getErr    error
	upsertErr error
	batchErr  error
}

func newMemShiftStore() *memShiftStore {
	return &memShiftStore{shifts: make(map[domain.ShiftKey]*domain.ShiftRecord)}
}

func (m *memShiftStore) ListShifts(start, end string) ([]*domain.ShiftRecord, error) {
	m.reads++
	result := make([]*domain.ShiftRecord, 0)
	for _, s := range m.shifts {
		if s.Date >= start && s.Date <= end {
			c := *s
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].Date < result[j].Date
	})
	return result, nil
}

func (m *memShiftStore) GetShift(employeeID, date string) (*domain.ShiftRecord, error) {
	m.reads++
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.shifts[domain.ShiftKey{EmployeeID: employeeID, Date: date}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *s
	return &c, nil
}

func (m *memShiftStore) upsert(shift *domain.ShiftRecord) {
	if m.precision > 0 {
		shift.UpdatedAt = shift.UpdatedAt.Truncate(m.precision)
	}
	c := *shift
	if old, ok := m.shifts[shift.Key()]; ok {
		// 与 ON CONFLICT DO UPDATE 一致：保留原有的 id 和创建时间
		c.ID = old.ID
		c.CreatedAt = old.CreatedAt
		shift.ID = old.ID
		shift.CreatedAt = old.CreatedAt
	}
	m.shifts[shift.Key()] = &c
}

func (m *memShiftStore) UpsertShift(shift *domain.ShiftRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.writes++
	m.upsert(shift)
	return nil
}

func (m *memShiftStore) UpsertShiftBatch(shifts []*domain.ShiftRecord) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	m.writes++
	for _, s := range shifts {
		m.upsert(s)
	}
	return nil
}

func (m *memShiftStore) CountShifts(start, end string) (int, error) {
	n := 0
	for _, s := range m.shifts {
		if s.Date >= start && s.Date <= end {
			n++
		}
	}
	return n, nil
}

// ── 内存版 PreferenceStore ──

type memPreferenceStore struct {
	preferences []*domain.Preference
	err         error
}

func (m *memPreferenceStore) ListPreferences(start, end string) ([]*domain.Preference, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*domain.Preference, 0)
	for _, p := range m.preferences {
		if p.Date >= start && p.Date <= end {
			result = append(result, p)
		}
	}
	return result, nil
}

// ── 内存版 EmployeeStore ──

type memEmployeeStore struct {
	employees []*domain.Employee
}

func (m *memEmployeeStore) GetAllEmployees() ([]*domain.Employee, error) {
	return m.employees, nil
}

// ── 测试辅助 ──

var errStoreDown = errors.New("connection refused")

// 2024-03-15，用于批量生成窗口的测试
var testToday = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	scheduler   *Scheduler
	shifts      *memShiftStore
	preferences *memPreferenceStore
	employees   *memEmployeeStore
	now         time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		shifts:      newMemShiftStore(),
		preferences: &memPreferenceStore{},
		employees: &memEmployeeStore{employees: []*domain.Employee{
			{ID: "E1", FullName: "王伟"},
			{ID: "E2", FullName: "李娜"},
			{ID: "E3", FullName: "张强"},
		}},
		now: testToday,
	}

	seq := 0
	env.scheduler = New(env.shifts, env.preferences, env.employees,
		WithClock(func() time.Time { return env.now }),
		WithLocation(time.UTC),
	)
	env.scheduler.newID = func() string {
		seq++
		return "shift-" + strconv.Itoa(seq)
	}

	return env
}

var manager = domain.Actor{ID: "M1", Role: domain.RoleManager}

func strPtr(s string) *string {
	return &s
}
