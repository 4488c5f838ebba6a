package scheduler

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// ShiftStore 是排班记录的持久化存储，(employee_id, date) 上有唯一约束
type ShiftStore interface {
	ListShifts(start, end string) ([]*domain.ShiftRecord, error)
	// GetShift 在记录不存在时返回 sql.ErrNoRows
	GetShift(employeeID, date string) (*domain.ShiftRecord, error)
	UpsertShift(shift *domain.ShiftRecord) error
	// UpsertShiftBatch 必须整体成功或整体失败
	UpsertShiftBatch(shifts []*domain.ShiftRecord) error
	CountShifts(start, end string) (int, error)
}

type PreferenceStore interface {
	ListPreferences(start, end string) ([]*domain.Preference, error)
}

type EmployeeStore interface {
	GetAllEmployees() ([]*domain.Employee, error)
}

type Scheduler struct {
	shifts      ShiftStore
	preferences PreferenceStore
	employees   EmployeeStore

	now      func() time.Time
	location *time.Location
	newID    func() string
}

type Option func(*Scheduler)

// WithClock 替换当前时间的来源，主要用于测试
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLocation 设置判断「今天」所使用的时区
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.location = loc
	}
}

func New(shifts ShiftStore, preferences PreferenceStore, employees EmployeeStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		shifts:      shifts,
		preferences: preferences,
		employees:   employees,
		now:         time.Now,
		location:    time.Local,
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Scheduler) today() time.Time {
	return s.now().In(s.location)
}

// stamp 返回写入记录的时间，精度与 timestamptz 一致，
// 否则调用方拿返回值做版本比较时会和读回来的值对不上
func (s *Scheduler) stamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

// Grid 读取某个月的花名册、排班记录和员工意愿，并组装成排班表
func (s *Scheduler) Grid(month calendar.Month) (*Grid, error) {
	window := month.Window()
	start, end := window.Range()

	employees, err := s.employees.GetAllEmployees()
	if err != nil {
		return nil, &domain.StoreError{Op: "获取员工列表", Err: err}
	}

	shifts, err := s.shifts.ListShifts(start, end)
	if err != nil {
		return nil, &domain.StoreError{Op: "获取排班记录", Err: err}
	}

	preferences, err := s.preferences.ListPreferences(start, end)
	if err != nil {
		return nil, &domain.StoreError{Op: "获取员工意愿", Err: err}
	}

	return BuildGrid(window, employees, shifts, preferences), nil
}

// EditResult 是一次单元格编辑的结果
type EditResult struct {
	Shift   *domain.ShiftRecord      `json:"shift"`
	Cell    Cell                     `json:"cell"`
	Warning *domain.StaleReadWarning `json:"warning"`
}

// EditShift 校验并保存对某个单元格的修改。
// 同一单元格的并发修改以最后一次写入为准，被覆盖的一方通过 Warning 得知需要刷新。
func (s *Scheduler) EditShift(actor domain.Actor, employeeID, date string, form ShiftForm) (*EditResult, error) {
	form, err := ValidateEdit(employeeID, date, form)
	if err != nil {
		return nil, err
	}

	existing, err := s.shifts.GetShift(employeeID, date)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.StoreError{Op: "获取排班记录", Err: err}
		}
		existing = nil
	}

	preferences, err := s.preferences.ListPreferences(date, date)
	if err != nil {
		return nil, &domain.StoreError{Op: "获取员工意愿", Err: err}
	}

	shift, err := applyEdit(existing, employeeID, date, form, actor, s.stamp(), s.newID)
	if err != nil {
		return nil, err
	}

	if err := s.shifts.UpsertShift(shift); err != nil {
		return nil, &domain.StoreError{Op: "保存排班记录", Err: err}
	}

	var preference *domain.Preference
	for _, p := range preferences {
		if p.EmployeeID == employeeID && p.Date == date {
			preference = p
			break
		}
	}

	t, _ := calendar.ParseDate(date)
	day, _ := calendar.Resolve(t.Year(), int(t.Month())-1).Day(date)

	return &EditResult{
		Shift:   shift,
		Cell:    newCell(employeeID, day, shift, preference),
		Warning: staleReadWarning(existing, form, employeeID, date),
	}, nil
}

// staleReadWarning 只在调用方声明了自己看到的版本时才比较，
// 既没有 SeenUpdatedAt 也没有 SeenEmpty 时不做检查
func staleReadWarning(existing *domain.ShiftRecord, form ShiftForm, employeeID, date string) *domain.StaleReadWarning {
	seen := form.SeenUpdatedAt
	switch {
	case seen != nil:
		if existing != nil && existing.UpdatedAt.Equal(*seen) {
			return nil
		}
	case form.SeenEmpty:
		if existing == nil {
			return nil
		}
	default:
		return nil
	}

	warning := &domain.StaleReadWarning{
		EmployeeID:    employeeID,
		Date:          date,
		SeenUpdatedAt: seen,
		Message:       "该排班在你打开之后已被其他人修改，你的修改已保存，请刷新排班表确认",
	}
	if existing != nil {
		overwritten := existing.UpdatedAt
		warning.OverwrittenAt = &overwritten
	}
	return warning
}
