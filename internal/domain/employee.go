package domain

import (
	"time"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// Employee 由花名册维护，排班模块只通过 ID 引用
type Employee struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Position  *string   `json:"position"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor 是当前会话的操作人，由调用方显式传入，不从全局状态读取
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}
