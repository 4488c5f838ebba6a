package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/utils"
)

func notificationRoutingKey(employeeID string) string {
	return fmt.Sprintf("employee.%s", employeeID)
}

func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target      string   `json:"target" validate:"required,oneof=all selected"`
		EmployeeIDs []string `json:"employeeIDs" validate:"required_if=Target selected,dive,required"`
		EventID     *string  `json:"eventID"`
		Text        string   `json:"text" validate:"required,max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	targets, err := utils.ResolveNotificationTargets(domain.NotificationTarget(req.Target), req.EmployeeIDs, employees)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	eventID := utils.NormalizeOptionalString(req.EventID)
	notifications := make([]*domain.Notification, 0, len(targets))
	for _, employee := range targets {
		notifications = append(notifications, &domain.Notification{
			ID:         uuid.NewString(),
			EmployeeID: employee.ID,
			EventID:    eventID,
			Text:       req.Text,
		})
	}

	if err := h.repository.InsertNotifications(notifications); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通知已经落库，推送失败只记录日志，员工仍然可以在站内看到
	published := 0
	for _, employee := range targets {
		if err := h.publishNotification(employee, req.Text); err != nil {
			slog.Error("推送通知失败", "employeeID", employee.ID, "error", err)
			continue
		}
		published++
	}

	h.successResponse(w, r, "发送通知成功", map[string]any{
		"notifications": notifications,
		"published":     published,
	})
}

func (h *Handler) publishNotification(employee *domain.Employee, text string) error {
	msg := domain.NotificationMessage{
		Type:        "event_notification",
		RecipientID: employee.ID,
		Data: domain.EventNotificationMailData{
			FullName: employee.FullName,
			Text:     text,
		},
	}
	if employee.Email != nil {
		msg.To = *employee.Email
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.publisher.PublishWithContext(
		ctx,
		h.config.RabbitMQ.Exchange,
		notificationRoutingKey(employee.ID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (h *Handler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(domain.Actor)

	notifications, err := h.repository.ListNotificationsByEmployee(actor.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取通知成功", notifications)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(ActorCtx).(domain.Actor)

	if err := h.repository.MarkNotificationRead(chi.URLParam(r, "id"), actor.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "通知不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "已标记为已读", nil)
}
