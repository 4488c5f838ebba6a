package domain

import "time"

type ShiftStatus string

const (
	ShiftStatusScheduled   ShiftStatus = "scheduled"
	ShiftStatusDayOff      ShiftStatus = "day_off"
	ShiftStatusCancelled   ShiftStatus = "cancelled"
	ShiftStatusTransferred ShiftStatus = "transferred"
	ShiftStatusReduced     ShiftStatus = "reduced"
)

var ShiftStatuses = []ShiftStatus{
	ShiftStatusScheduled,
	ShiftStatusDayOff,
	ShiftStatusCancelled,
	ShiftStatusTransferred,
	ShiftStatusReduced,
}

func (s ShiftStatus) Valid() bool {
	for _, status := range ShiftStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// HasWorkingHours 为 false 时记录不能带有上下班时间
func (s ShiftStatus) HasWorkingHours() bool {
	return s != ShiftStatusDayOff && s != ShiftStatusCancelled
}

// TakesReplacement 表示替班员工对该状态是否有实际意义
func (s ShiftStatus) TakesReplacement() bool {
	return s == ShiftStatusCancelled || s == ShiftStatusTransferred
}

// ShiftRecord 是某个员工在某一天的排班，(EmployeeID, Date) 唯一
type ShiftRecord struct {
	ID                    string      `json:"id"`
	EmployeeID            string      `json:"employeeID"`
	Date                  string      `json:"date"` // YYYY-MM-DD
	Status                ShiftStatus `json:"status"`
	StartTime             *string     `json:"startTime"` // HH:MM
	EndTime               *string     `json:"endTime"`   // HH:MM
	Reason                *string     `json:"reason"`
	ReplacementEmployeeID *string     `json:"replacementEmployeeID"`
	UpdatedBy             *string     `json:"updatedBy"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// Key 返回 (员工, 日期) 复合键
func (s *ShiftRecord) Key() ShiftKey {
	return ShiftKey{EmployeeID: s.EmployeeID, Date: s.Date}
}

type ShiftKey struct {
	EmployeeID string
	Date       string
}
