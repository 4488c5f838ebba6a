package domain

import "time"

type NotificationTarget string

const (
	NotificationTargetAll      NotificationTarget = "all"
	NotificationTargetSelected NotificationTarget = "selected"
)

type Notification struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeID"`
	EventID    *string   `json:"eventID"`
	Text       string    `json:"text"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NotificationMessage 是投递到消息队列中的消息，路由键按收件人区分
type NotificationMessage struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipientID"`
	To          string `json:"to"`
	Data        any    `json:"data"`
}

type EventNotificationMailData struct {
	FullName string `json:"fullName"`
	Text     string `json:"text"`
}
