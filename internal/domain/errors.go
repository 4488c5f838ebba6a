package domain

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError 表示传给排班编辑的参数不合法，此时不会写入存储
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OutOfWindowError 表示批量生成的目标月份不在允许范围内
type OutOfWindowError struct {
	Target  string
	Allowed string
}

func (e *OutOfWindowError) Error() string {
	return fmt.Sprintf("只能为下个月（%s）生成排班表，不能为 %s 生成", e.Allowed, e.Target)
}

// StoreError 包装存储层返回的任何错误
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// StaleReadWarning 不是错误：调用方看到的记录已被其他会话修改，保存仍然生效，但需要重新获取
type StaleReadWarning struct {
	EmployeeID    string     `json:"employeeID"`
	Date          string     `json:"date"`
	SeenUpdatedAt *time.Time `json:"seenUpdatedAt"`
	OverwrittenAt *time.Time `json:"overwrittenAt"`
	Message       string     `json:"message"`
}

var (
	ErrOverwriteNotConfirmed = errors.New("该月份已存在排班记录，重新生成会覆盖所有手动修改，请确认后再试")
	ErrGenerationInProgress  = errors.New("该月份的排班表正在生成中，请稍后再试")
)
