package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// EmployeeCalendar 把某个员工一个月的排班导出为 iCalendar。
// 有上下班时间的记录导出为定时事件，休息和取消导出为全天事件。
func EmployeeCalendar(employee *domain.Employee, shifts []*domain.ShiftRecord, loc *time.Location, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sysu-ecnc-dev//workforce-manager//CN")
	cal.SetXWRCalName(fmt.Sprintf("%s 的排班", employee.FullName))

	for _, shift := range shifts {
		if shift.EmployeeID != employee.ID {
			continue
		}

		day, err := time.ParseInLocation(calendar.DateLayout, shift.Date, loc)
		if err != nil {
			return "", err
		}

		event := cal.AddEvent(fmt.Sprintf("%s@workforce-manager", shift.ID))
		event.SetDtStampTime(now)
		event.SetSummary(statusLabels[shift.Status])
		if shift.Reason != nil {
			event.SetDescription(*shift.Reason)
		}

		if shift.StartTime == nil || shift.EndTime == nil {
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))
			continue
		}

		start, err := atClock(day, *shift.StartTime)
		if err != nil {
			return "", err
		}
		end, err := atClock(day, *shift.EndTime)
		if err != nil {
			return "", err
		}
		// 跨夜的班次结束时间算到第二天
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
		event.SetStartAt(start)
		event.SetEndAt(end)
	}

	return cal.Serialize(), nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
