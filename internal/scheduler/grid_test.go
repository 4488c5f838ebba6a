package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

func TestBuildGrid_PreferenceWithoutShiftIsConflict(t *testing.T) {
	window := calendar.Resolve(2024, 3)
	employees := []*domain.Employee{{ID: "E1", FullName: "王伟"}}
	preferences := []*domain.Preference{
		{ID: "p1", EmployeeID: "E1", Date: "2024-04-10", Text: "这天不想上班"},
	}

	grid := BuildGrid(window, employees, nil, preferences)

	cell, ok := grid.Cell("E1", "2024-04-10")
	require.True(t, ok)
	assert.True(t, cell.HasConflict)
	assert.True(t, cell.IsEmpty())
	require.NotNil(t, cell.Preference)
	assert.Equal(t, "这天不想上班", cell.Preference.Text)
	assert.Equal(t, 1, grid.ConflictCount)
}

func TestBuildGrid_EmployeeWithoutShiftsGetsEmptyRow(t *testing.T) {
	window := calendar.Resolve(2024, 3)
	employees := []*domain.Employee{{ID: "E1"}, {ID: "E2"}}
	shifts := []*domain.ShiftRecord{
		{ID: "s1", EmployeeID: "E1", Date: "2024-04-01", Status: domain.ShiftStatusScheduled},
	}

	grid := BuildGrid(window, employees, shifts, nil)

	assert.Equal(t, "2024-04", grid.Month)
	require.Len(t, grid.Rows, 2)

	row, ok := grid.Row("E2")
	require.True(t, ok)
	require.Len(t, row.Cells, 30)
	for _, c := range row.Cells {
		assert.True(t, c.IsEmpty(), c.Date)
		assert.False(t, c.HasConflict)
	}

	cell, ok := grid.Cell("E1", "2024-04-01")
	require.True(t, ok)
	assert.False(t, cell.IsEmpty())
	assert.Equal(t, "s1", cell.Shift.ID)
}

func TestBuildGrid_WeekendFlagsComeFromCalendar(t *testing.T) {
	window := calendar.Resolve(2024, 3)
	grid := BuildGrid(window, []*domain.Employee{{ID: "E1"}}, nil, nil)

	sat, _ := grid.Cell("E1", "2024-04-06")
	sun, _ := grid.Cell("E1", "2024-04-07")
	mon, _ := grid.Cell("E1", "2024-04-08")

	assert.True(t, sat.IsWeekend)
	assert.True(t, sun.IsWeekend)
	assert.False(t, mon.IsWeekend)
	assert.Equal(t, 1, mon.Weekday)
}

func TestBuildGrid_IgnoresUnknownEmployeesAndDates(t *testing.T) {
	window := calendar.Resolve(2024, 3)
	shifts := []*domain.ShiftRecord{
		{ID: "s1", EmployeeID: "ghost", Date: "2024-04-02", Status: domain.ShiftStatusScheduled},
		{ID: "s2", EmployeeID: "E1", Date: "2024-05-02", Status: domain.ShiftStatusScheduled},
	}
	preferences := []*domain.Preference{
		{EmployeeID: "ghost", Date: "2024-04-02", Text: "x"},
	}

	grid := BuildGrid(window, []*domain.Employee{{ID: "E1"}}, shifts, preferences)

	assert.Equal(t, 0, grid.ConflictCount)
	_, ok := grid.Cell("ghost", "2024-04-02")
	assert.False(t, ok)
	_, ok = grid.Cell("E1", "2024-05-02")
	assert.False(t, ok)
}

func TestHasConflict(t *testing.T) {
	window := calendar.Resolve(2024, 3)
	weekday, _ := window.Day("2024-04-10")
	saturday, _ := window.Day("2024-04-13")
	pref := &domain.Preference{EmployeeID: "E1", Date: "2024-04-10", Text: "想休息"}

	cases := []struct {
		name  string
		day   calendar.Day
		shift *domain.ShiftRecord
		pref  *domain.Preference
		want  bool
	}{
		{"没有意愿", weekday, &domain.ShiftRecord{Status: domain.ShiftStatusScheduled}, nil, false},
		{"没有记录", weekday, nil, pref, true},
		{"默认上班", weekday, &domain.ShiftRecord{Status: domain.ShiftStatusScheduled}, pref, true},
		{"管理员已注明原因", weekday, &domain.ShiftRecord{Status: domain.ShiftStatusScheduled, Reason: strPtr("已沟通")}, pref, false},
		{"已改为休息", weekday, &domain.ShiftRecord{Status: domain.ShiftStatusDayOff}, pref, false},
		{"已取消", weekday, &domain.ShiftRecord{Status: domain.ShiftStatusCancelled}, pref, false},
		{"已调班", weekday, &domain.ShiftRecord{Status: domain.ShiftStatusTransferred}, pref, false},
		{"已缩短", weekday, &domain.ShiftRecord{Status: domain.ShiftStatusReduced}, pref, false},
		{"周末默认休息", saturday, &domain.ShiftRecord{Status: domain.ShiftStatusDayOff}, pref, true},
		{"周末休息已注明原因", saturday, &domain.ShiftRecord{Status: domain.ShiftStatusDayOff, Reason: strPtr("人手够")}, pref, false},
		{"周末已安排上班", saturday, &domain.ShiftRecord{Status: domain.ShiftStatusScheduled}, pref, false},
		{"周末没有记录", saturday, nil, pref, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, HasConflict(c.day, c.shift, c.pref))
		})
	}
}

func TestBuildGrid_WeekendPreferenceAfterGeneration(t *testing.T) {
	window := calendar.Resolve(2024, 3)
	employees := []*domain.Employee{{ID: "E1"}}
	shifts := DefaultShifts(window, employees, manager, testToday, func() string { return "id" })
	preferences := []*domain.Preference{
		{EmployeeID: "E1", Date: "2024-04-13", Text: "周六想来上班"},
		{EmployeeID: "E1", Date: "2024-04-10", Text: "想休息"},
	}

	grid := BuildGrid(window, employees, shifts, preferences)

	saturday, _ := grid.Cell("E1", "2024-04-13")
	assert.Equal(t, domain.ShiftStatusDayOff, saturday.Shift.Status)
	assert.True(t, saturday.HasConflict)

	wednesday, _ := grid.Cell("E1", "2024-04-10")
	assert.True(t, wednesday.HasConflict)
	assert.Equal(t, 2, grid.ConflictCount)
}

func TestScheduler_Grid(t *testing.T) {
	env := newTestEnv()
	env.preferences.preferences = []*domain.Preference{
		{EmployeeID: "E2", Date: "2024-04-10", Text: "请假"},
		{EmployeeID: "E2", Date: "2024-05-10", Text: "下个月的"},
	}
	env.shifts.shifts[domain.ShiftKey{EmployeeID: "E1", Date: "2024-04-01"}] = &domain.ShiftRecord{
		ID: "s1", EmployeeID: "E1", Date: "2024-04-01", Status: domain.ShiftStatusReduced,
	}

	month, _ := calendar.ParseMonth("2024-04")
	grid, err := env.scheduler.Grid(month)
	require.NoError(t, err)

	assert.Len(t, grid.Rows, 3)
	assert.Len(t, grid.Days, 30)
	assert.Equal(t, 1, grid.ConflictCount)

	cell, _ := grid.Cell("E1", "2024-04-01")
	assert.Equal(t, domain.ShiftStatusReduced, cell.Shift.Status)
}

func TestScheduler_GridStoreError(t *testing.T) {
	env := newTestEnv()
	env.preferences.err = errStoreDown

	month, _ := calendar.ParseMonth("2024-04")
	_, err := env.scheduler.Grid(month)

	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, errStoreDown)
}
