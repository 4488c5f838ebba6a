package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "18:00"
)

// AllowedGenerationMonth 返回 today 所在月份的下一个月，只有这个月可以批量生成
func AllowedGenerationMonth(today time.Time) calendar.Month {
	return calendar.MonthOf(today).Next()
}

// CheckGenerationWindow 要求目标月份的第一天落在 [下个月第一天, 下个月最后一天] 之间
func CheckGenerationWindow(target calendar.Month, today time.Time) error {
	allowed := AllowedGenerationMonth(today)
	if target != allowed {
		return &domain.OutOfWindowError{Target: target.String(), Allowed: allowed.String()}
	}
	return nil
}

// DefaultShifts 为每个员工的每一天生成默认排班：工作日 09:00-18:00 上班，周末休息
func DefaultShifts(window calendar.Window, employees []*domain.Employee, actor domain.Actor, now time.Time, newID func() string) []*domain.ShiftRecord {
	shifts := make([]*domain.ShiftRecord, 0, len(employees)*len(window.Days))

	var updatedBy *string
	if actor.ID != "" {
		actorID := actor.ID
		updatedBy = &actorID
	}

	for _, employee := range employees {
		for _, day := range window.Days {
			shift := &domain.ShiftRecord{
				ID:         newID(),
				EmployeeID: employee.ID,
				Date:       day.Date,
				UpdatedBy:  updatedBy,
				CreatedAt:  now,
				UpdatedAt:  now,
			}

			shift.Status = defaultStatus(day)
			if shift.Status.HasWorkingHours() {
				startTime, endTime := DefaultStartTime, DefaultEndTime
				shift.StartTime = &startTime
				shift.EndTime = &endTime
			}

			shifts = append(shifts, shift)
		}
	}

	return shifts
}

type GenerateOptions struct {
	// ConfirmOverwrite 为 true 时才允许覆盖该月已有的记录（包括手动修改过的）
	ConfirmOverwrite bool
}

// GenerateMonth 为所有员工一次性生成 target 月的默认排班，并以 (employee_id, date) 为键整体覆盖写入。
// 写入失败时不会留下部分结果，返回写入的记录条数。
func (s *Scheduler) GenerateMonth(actor domain.Actor, target calendar.Month, employees []*domain.Employee, opts GenerateOptions) (int, error) {
	if err := CheckGenerationWindow(target, s.today()); err != nil {
		return 0, err
	}

	window := target.Window()
	start, end := window.Range()

	existing, err := s.shifts.CountShifts(start, end)
	if err != nil {
		return 0, &domain.StoreError{Op: "统计已有排班记录", Err: err}
	}
	if existing > 0 && !opts.ConfirmOverwrite {
		return 0, domain.ErrOverwriteNotConfirmed
	}

	shifts := DefaultShifts(window, employees, actor, s.stamp(), s.newID)
	if len(shifts) == 0 {
		return 0, nil
	}

	if err := s.shifts.UpsertShiftBatch(shifts); err != nil {
		return 0, &domain.StoreError{Op: "批量写入排班记录", Err: err}
	}

	return len(shifts), nil
}
