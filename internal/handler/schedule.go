package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/scheduler"
)

// schedulingError 把排班模块返回的错误转换成响应
func (h *Handler) schedulingError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	var outOfWindowErr *domain.OutOfWindowError
	var pgErr *pgconn.PgError

	switch {
	case errors.As(err, &validationErr):
		h.errorResponse(w, r, validationErr.Message)
	case errors.As(err, &outOfWindowErr):
		h.errorResponse(w, r, outOfWindowErr.Error())
	case errors.Is(err, domain.ErrOverwriteNotConfirmed):
		h.failResponse(w, r, err.Error(), map[string]bool{"requiresConfirmation": true})
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "shifts_employee_id_fkey":
			h.errorResponse(w, r, "员工不存在")
		case "shifts_replacement_employee_id_fkey":
			h.errorResponse(w, r, "替班员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	month := r.Context().Value(ScheduleMonthCtx).(calendar.Month)

	grid, err := h.scheduler.Grid(month)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班表成功", grid)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status                string     `json:"status" validate:"required"`
		StartTime             *string    `json:"startTime"`
		EndTime               *string    `json:"endTime"`
		Reason                *string    `json:"reason" validate:"omitempty,max=200"`
		ReplacementEmployeeID *string    `json:"replacementEmployeeID"`
		SeenUpdatedAt         *time.Time `json:"seenUpdatedAt"`
		SeenEmpty             bool       `json:"seenEmpty"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	month := r.Context().Value(ScheduleMonthCtx).(calendar.Month)
	actor := r.Context().Value(ActorCtx).(domain.Actor)
	employeeID := chi.URLParam(r, "employeeID")
	date := chi.URLParam(r, "date")

	if _, ok := month.Window().Day(date); !ok {
		h.errorResponse(w, r, fmt.Sprintf("日期 %s 不在 %s 内", date, month))
		return
	}

	res, err := h.scheduler.EditShift(actor, employeeID, date, scheduler.ShiftForm{
		Status:                domain.ShiftStatus(req.Status),
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		Reason:                req.Reason,
		ReplacementEmployeeID: req.ReplacementEmployeeID,
		SeenUpdatedAt:         req.SeenUpdatedAt,
		SeenEmpty:             req.SeenEmpty,
	})
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	msg := "更新排班成功"
	if res.Warning != nil {
		msg = res.Warning.Message
	}
	h.successResponse(w, r, msg, res)
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfirmOverwrite bool `json:"confirmOverwrite"`
	}

	if err := h.readOptionalJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	month := r.Context().Value(ScheduleMonthCtx).(calendar.Month)
	actor := r.Context().Value(ActorCtx).(domain.Actor)

	release, acquired, err := h.acquireGenerationLock(month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.errorResponse(w, r, domain.ErrGenerationInProgress.Error())
		return
	}
	defer release()

	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	count, err := h.scheduler.GenerateMonth(actor, month, employees, scheduler.GenerateOptions{
		ConfirmOverwrite: req.ConfirmOverwrite,
	})
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	// 写入后重新生成排班表返回给前端
	grid, err := h.scheduler.Grid(month)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, fmt.Sprintf("已生成 %d 条排班记录", count), map[string]any{
		"count": count,
		"grid":  grid,
	})
}
