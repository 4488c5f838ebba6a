package utils

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// NormalizeTimeOfDay 接受 HH:MM 或 HH:MM:SS（数据库 time 类型的格式），统一返回 HH:MM
func NormalizeTimeOfDay(s string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("时间 %q 格式错误，应为 HH:MM", s)
}

// NormalizeOptionalString 把空白字符串视为未填写
func NormalizeOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ResolveNotificationTargets 根据通知目标筛选出需要通知的员工
func ResolveNotificationTargets(target domain.NotificationTarget, selected []string, employees []*domain.Employee) ([]*domain.Employee, error) {
	switch target {
	case domain.NotificationTargetAll:
		return employees, nil
	case domain.NotificationTargetSelected:
		if len(selected) == 0 {
			return nil, errors.New("请至少选择一名员工")
		}

		targets := make([]*domain.Employee, 0, len(selected))
		for _, id := range selected {
			idx := slices.IndexFunc(employees, func(e *domain.Employee) bool { return e.ID == id })
			if idx < 0 {
				return nil, fmt.Errorf("员工 %s 不存在", id)
			}
			if !slices.ContainsFunc(targets, func(e *domain.Employee) bool { return e.ID == id }) {
				targets = append(targets, employees[idx])
			}
		}
		return targets, nil
	default:
		return nil, fmt.Errorf("不支持的通知目标 %q", target)
	}
}
