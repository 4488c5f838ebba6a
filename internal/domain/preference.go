package domain

import "time"

// Preference 是员工对某一天提出的排班意愿，只做提示
type Preference struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeID"`
	Date       string    `json:"date"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (p *Preference) Key() ShiftKey {
	return ShiftKey{EmployeeID: p.EmployeeID, Date: p.Date}
}
