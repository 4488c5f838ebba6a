package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// 花名册 CSV 的信息列，其余形如 2025-04-01 的列是当天的意愿
const (
	columnID       = "工号"
	columnName     = "姓名"
	columnPosition = "岗位"
	columnEmail    = "邮箱"
)

type RosterStore interface {
	GetEmployeeByID(id string) (*domain.Employee, error)
	CreateEmployee(employee *domain.Employee) error
	UpsertPreference(preference *domain.Preference) error
}

type RosterEntry struct {
	Employee    *domain.Employee
	Preferences map[string]string // 日期 -> 意愿
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func ReadRoster(r io.Reader) ([]RosterEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	dateHeaders := []string{}
	infoHeaders := map[string]bool{}
	for _, header := range headers {
		header = strings.TrimSpace(header)
		if _, err := calendar.ParseDate(header); err == nil {
			dateHeaders = append(dateHeaders, header)
		} else {
			infoHeaders[header] = true
		}
	}

	if !infoHeaders[columnID] || !infoHeaders[columnName] {
		return nil, fmt.Errorf("花名册缺少 %s 或 %s 列", columnID, columnName)
	}

	entries := make([]RosterEntry, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		record := make(map[string]string, len(row))
		for i, value := range row {
			record[strings.TrimSpace(headers[i])] = strings.TrimSpace(value)
		}

		if record[columnID] == "" || record[columnName] == "" {
			slog.Warn("跳过缺少工号或姓名的行", slog.Int("line", line))
			continue
		}

		entry := RosterEntry{
			Employee: &domain.Employee{
				ID:       record[columnID],
				FullName: record[columnName],
				Position: optional(record[columnPosition]),
				Email:    optional(record[columnEmail]),
			},
			Preferences: make(map[string]string),
		}
		for _, date := range dateHeaders {
			if text := record[date]; text != "" {
				entry.Preferences[date] = text
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// ImportRoster 逐行导入，单行失败只记录日志，返回新建员工数和写入的意愿数
func ImportRoster(store RosterStore, entries []RosterEntry) (int, int) {
	created, preferences := 0, 0

	for _, entry := range entries {
		employee, err := store.GetEmployeeByID(entry.Employee.ID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				// 表示该员工不在数据库中，需要新建并插入
				employee = entry.Employee
				if err := store.CreateEmployee(employee); err != nil {
					slog.Error("插入员工失败", slog.String("id", employee.ID), slog.String("error", err.Error()))
					continue
				}
				created++
			default:
				slog.Error("获取员工失败", slog.String("id", entry.Employee.ID), slog.String("error", err.Error()))
				continue
			}
		}

		for date, text := range entry.Preferences {
			preference := &domain.Preference{
				ID:         uuid.NewString(),
				EmployeeID: employee.ID,
				Date:       date,
				Text:       text,
			}
			if err := store.UpsertPreference(preference); err != nil {
				slog.Error("插入意愿失败", slog.String("id", employee.ID), slog.String("date", date), slog.String("error", err.Error()))
				continue
			}
			preferences++
		}
	}

	return created, preferences
}

func SeedRoster(store RosterStore, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	defer file.Close()

	entries, err := ReadRoster(file)
	if err != nil {
		slog.Error("解析花名册失败", slog.String("error", err.Error()))
		return
	}

	created, preferences := ImportRoster(store, entries)
	slog.Info("导入花名册完成", slog.Int("rows", len(entries)), slog.Int("employees", created), slog.Int("preferences", preferences))
}
