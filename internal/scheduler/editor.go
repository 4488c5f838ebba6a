package scheduler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/utils"
)

// ShiftForm 是管理员在编辑框中提交的内容
type ShiftForm struct {
	Status                domain.ShiftStatus
	StartTime             *string
	EndTime               *string
	Reason                *string
	ReplacementEmployeeID *string
	// SeenUpdatedAt 是管理员打开编辑框时看到的记录版本
	SeenUpdatedAt *time.Time
	// SeenEmpty 表示管理员打开编辑框时该格还没有记录
	SeenEmpty bool
}

// ValidateEdit 校验表单并返回规范化后的表单，不访问任何存储
func ValidateEdit(employeeID, date string, form ShiftForm) (ShiftForm, error) {
	if strings.TrimSpace(employeeID) == "" {
		return form, &domain.ValidationError{Field: "employeeID", Message: "员工不能为空"}
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return form, &domain.ValidationError{Field: "date", Message: err.Error()}
	}
	if !form.Status.Valid() {
		return form, &domain.ValidationError{Field: "status", Message: "无效的排班状态"}
	}

	form.Reason = utils.NormalizeOptionalString(form.Reason)
	form.ReplacementEmployeeID = utils.NormalizeOptionalString(form.ReplacementEmployeeID)
	if form.ReplacementEmployeeID != nil && *form.ReplacementEmployeeID == employeeID {
		return form, &domain.ValidationError{Field: "replacementEmployeeID", Message: "替班员工不能是本人"}
	}

	// 休息和取消的班次不保留上下班时间，无论表单里填了什么
	if !form.Status.HasWorkingHours() {
		form.StartTime = nil
		form.EndTime = nil
		return form, nil
	}

	var err error
	if form.StartTime, err = normalizeTime(form.StartTime); err != nil {
		return form, &domain.ValidationError{Field: "startTime", Message: err.Error()}
	}
	if form.EndTime, err = normalizeTime(form.EndTime); err != nil {
		return form, &domain.ValidationError{Field: "endTime", Message: err.Error()}
	}

	return form, nil
}

func normalizeTime(s *string) (*string, error) {
	s = utils.NormalizeOptionalString(s)
	if s == nil {
		return nil, nil
	}
	v, err := utils.NormalizeTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ApplyEdit 根据表单生成修改后的排班记录，existing 为空时新建。
// 任何状态都可以直接改成任何其他状态。existing 本身不会被修改。
func ApplyEdit(existing *domain.ShiftRecord, employeeID, date string, form ShiftForm, actor domain.Actor, now time.Time) (*domain.ShiftRecord, error) {
	return applyEdit(existing, employeeID, date, form, actor, now, uuid.NewString)
}

func applyEdit(existing *domain.ShiftRecord, employeeID, date string, form ShiftForm, actor domain.Actor, now time.Time, newID func() string) (*domain.ShiftRecord, error) {
	form, err := ValidateEdit(employeeID, date, form)
	if err != nil {
		return nil, err
	}

	shift := &domain.ShiftRecord{
		EmployeeID: employeeID,
		Date:       date,
		CreatedAt:  now,
	}
	if existing != nil {
		if existing.EmployeeID != employeeID || existing.Date != date {
			return nil, &domain.ValidationError{Field: "shift", Message: "排班记录与所编辑的员工或日期不一致"}
		}
		shift.ID = existing.ID
		shift.CreatedAt = existing.CreatedAt
	} else {
		shift.ID = newID()
	}

	shift.Status = form.Status
	shift.StartTime = form.StartTime
	shift.EndTime = form.EndTime
	shift.Reason = form.Reason
	shift.ReplacementEmployeeID = form.ReplacementEmployeeID
	shift.UpdatedAt = now
	if actor.ID != "" {
		actorID := actor.ID
		shift.UpdatedBy = &actorID
	}

	return shift, nil
}
