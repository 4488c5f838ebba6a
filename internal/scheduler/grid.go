package scheduler

import (
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// Cell 是排班表中 (员工, 日期) 对应的一格
type Cell struct {
	EmployeeID string `json:"employeeID"`
	calendar.Day
	Shift       *domain.ShiftRecord `json:"shift"`      // 为空表示该格还没有排班记录
	Preference  *domain.Preference  `json:"preference"` // 员工对这一天的意愿
	HasConflict bool                `json:"hasConflict"`
}

func (c *Cell) IsEmpty() bool {
	return c.Shift == nil
}

type Row struct {
	Employee *domain.Employee `json:"employee"`
	Cells    []Cell           `json:"cells"`
}

type Grid struct {
	Month         string         `json:"month"`
	Days          []calendar.Day `json:"days"`
	Rows          []Row          `json:"rows"`
	ConflictCount int            `json:"conflictCount"`

	index map[domain.ShiftKey]*Cell
}

// BuildGrid 把日期窗口、花名册、排班记录和员工意愿拼成排班表，不做任何 IO。
// 不在花名册中的员工以及不在窗口内的日期会被忽略。
func BuildGrid(window calendar.Window, employees []*domain.Employee, shifts []*domain.ShiftRecord, preferences []*domain.Preference) *Grid {
	shiftMap := make(map[domain.ShiftKey]*domain.ShiftRecord, len(shifts))
	for _, shift := range shifts {
		shiftMap[shift.Key()] = shift
	}

	preferenceMap := make(map[domain.ShiftKey]*domain.Preference, len(preferences))
	for _, p := range preferences {
		preferenceMap[p.Key()] = p
	}

	start, _ := window.Range()
	grid := &Grid{
		Days:  window.Days,
		Rows:  make([]Row, len(employees)),
		index: make(map[domain.ShiftKey]*Cell, len(employees)*len(window.Days)),
	}
	if len(start) >= 7 {
		grid.Month = start[:7]
	}

	for i, employee := range employees {
		row := Row{
			Employee: employee,
			Cells:    make([]Cell, len(window.Days)),
		}

		for j, day := range window.Days {
			key := domain.ShiftKey{EmployeeID: employee.ID, Date: day.Date}
			row.Cells[j] = newCell(employee.ID, day, shiftMap[key], preferenceMap[key])
			if row.Cells[j].HasConflict {
				grid.ConflictCount++
			}
			grid.index[key] = &row.Cells[j]
		}

		grid.Rows[i] = row
	}

	return grid
}

// Cell 按 (员工, 日期) 查找单元格
func (g *Grid) Cell(employeeID, date string) (*Cell, bool) {
	c, ok := g.index[domain.ShiftKey{EmployeeID: employeeID, Date: date}]
	return c, ok
}

// Row 按员工查找整行
func (g *Grid) Row(employeeID string) (*Row, bool) {
	for i := range g.Rows {
		if g.Rows[i].Employee.ID == employeeID {
			return &g.Rows[i], true
		}
	}
	return nil, false
}

func newCell(employeeID string, day calendar.Day, shift *domain.ShiftRecord, preference *domain.Preference) Cell {
	return Cell{
		EmployeeID:  employeeID,
		Day:         day,
		Shift:       shift,
		Preference:  preference,
		HasConflict: HasConflict(day, shift, preference),
	}
}

// HasConflict 判断员工意愿是否没有在排班中体现。
// 意愿是对当天默认安排的修改请求（工作日上班，周末休息）：没有记录，
// 或者记录仍然是该天的默认状态且管理员没有注明原因，都视为冲突。
// 冲突只做提示，不会阻止编辑。
func HasConflict(day calendar.Day, shift *domain.ShiftRecord, preference *domain.Preference) bool {
	if preference == nil {
		return false
	}
	if shift == nil {
		return true
	}
	if shift.Reason != nil {
		return false
	}
	return shift.Status == defaultStatus(day)
}

func defaultStatus(day calendar.Day) domain.ShiftStatus {
	if day.IsWeekend {
		return domain.ShiftStatusDayOff
	}
	return domain.ShiftStatusScheduled
}
