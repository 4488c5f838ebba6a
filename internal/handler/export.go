package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/export"
)

func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	month := r.Context().Value(ScheduleMonthCtx).(calendar.Month)

	grid, err := h.scheduler.Grid(month)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	buf, filename, err := export.GridWorkbook(grid)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeFile(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, buf.Bytes())
}

func (h *Handler) ExportEmployeeCalendar(w http.ResponseWriter, r *http.Request) {
	month := r.Context().Value(ScheduleMonthCtx).(calendar.Month)
	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	start, end := month.Window().Range()
	shifts, err := h.repository.ListShiftsByEmployee(employee.ID, start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	loc, err := h.config.Location()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	body, err := export.EmployeeCalendar(employee, shifts, loc, time.Now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeFile(w, r, "text/calendar; charset=utf-8", fmt.Sprintf("%s_%s.ics", employee.FullName, month), []byte(body))
}
