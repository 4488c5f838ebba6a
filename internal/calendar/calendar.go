// Package calendar 负责把「年 + 月」解析为该月的日期序列。
// 排班表的展示和批量生成都只通过这里计算月份边界，避免两处各算一遍。
package calendar

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Day 表示某个月中的一天
type Day struct {
	Date      string `json:"date"`
	Day       int    `json:"day"`
	Weekday   int    `json:"weekday"` // 0 = 周日 ... 6 = 周六
	IsWeekend bool   `json:"isWeekend"`
}

// Window 表示一个月的完整日期窗口，每次渲染时重新生成
type Window struct {
	Year  int   `json:"year"`
	Month int   `json:"month"` // 从 0 开始，0 = 一月
	Days  []Day `json:"days"`
}

// DaysIn 返回某年某月（month 从 0 开始）的天数，已考虑闰年
func DaysIn(year, month int) int {
	// 下个月的第 0 天即本月最后一天
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// Resolve 返回某年某月（month 从 0 开始）的日期窗口
func Resolve(year, month int) Window {
	n := DaysIn(year, month)
	w := Window{
		Year:  year,
		Month: month,
		Days:  make([]Day, 0, n),
	}

	for d := 1; d <= n; d++ {
		t := time.Date(year, time.Month(month+1), d, 0, 0, 0, 0, time.UTC)
		weekday := int(t.Weekday())
		w.Days = append(w.Days, Day{
			Date:      t.Format(DateLayout),
			Day:       d,
			Weekday:   weekday,
			IsWeekend: weekday == 0 || weekday == 6,
		})
	}

	return w
}

// Range 返回查询该月数据所用的闭区间 [YYYY-MM-01, YYYY-MM-<最后一天>]
func (w Window) Range() (string, string) {
	if len(w.Days) == 0 {
		return "", ""
	}
	return w.Days[0].Date, w.Days[len(w.Days)-1].Date
}

// Contains 判断日期是否落在该窗口内
func (w Window) Contains(date string) bool {
	start, end := w.Range()
	return date >= start && date <= end
}

// Day 按日期查找窗口中的某一天
func (w Window) Day(date string) (Day, bool) {
	t, err := ParseDate(date)
	if err != nil || t.Year() != w.Year || int(t.Month())-1 != w.Month {
		return Day{}, false
	}
	return w.Days[t.Day()-1], true
}

// Month 表示日历上的某个月
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth 解析形如 2024-04 的月份
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("无效的月份 %q，格式应为 YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf 返回某个时刻在其所在时区下的月份
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Next 返回下一个月
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(t)
}

// Window 返回该月的日期窗口
func (m Month) Window() Window {
	return Resolve(m.Year, int(m.Month)-1)
}

// ParseDate 解析形如 2024-04-10 的日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q，格式应为 YYYY-MM-DD", s)
	}
	return t, nil
}
