package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

func expectNotificationInsert(env *testEnv, n int) {
	env.mock.ExpectBegin()
	for i := 0; i < n; i++ {
		env.mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows([]string{"is_read", "created_at"}).AddRow(false, testToday))
	}
	env.mock.ExpectCommit()
}

func TestCreateNotification_Selected(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM employees`).WillReturnRows(employeeRows("E1", "E2", "E3"))
	expectNotificationInsert(env, 2)

	body := map[string]any{
		"target":      "selected",
		"employeeIDs": []string{"E3", "E1", "E3"},
		"text":        "周五下午例会",
	}
	_, resp := env.do(t, http.MethodPost, "/notifications", body, &managerActor)
	require.True(t, resp.Success, resp.Message)

	require.Len(t, env.publisher.messages, 2)
	assert.Equal(t, "notifications", env.publisher.messages[0].exchange)
	assert.Equal(t, "employee.E3", env.publisher.messages[0].key)
	assert.Equal(t, "employee.E1", env.publisher.messages[1].key)

	var msg domain.NotificationMessage
	require.NoError(t, json.Unmarshal(env.publisher.messages[0].msg.Body, &msg))
	assert.Equal(t, "event_notification", msg.Type)
	assert.Equal(t, "E3", msg.RecipientID)
	assert.Equal(t, "E3@example.com", msg.To)

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateNotification_All(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM employees`).WillReturnRows(employeeRows("E1", "E2", "E3"))
	expectNotificationInsert(env, 3)

	_, resp := env.do(t, http.MethodPost, "/notifications", map[string]any{"target": "all", "text": "系统维护"}, &managerActor)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, env.publisher.messages, 3)

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateNotification_UnknownEmployee(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM employees`).WillReturnRows(employeeRows("E1"))

	body := map[string]any{"target": "selected", "employeeIDs": []string{"ghost"}, "text": "x"}
	_, resp := env.do(t, http.MethodPost, "/notifications", body, &managerActor)
	assert.False(t, resp.Success)
	assert.Equal(t, "员工 ghost 不存在", resp.Message)
	assert.Empty(t, env.publisher.messages)

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateNotification_PublishFailureKeepsRows(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errDatabaseDown

	env.mock.ExpectQuery(`FROM employees`).WillReturnRows(employeeRows("E1"))
	expectNotificationInsert(env, 1)

	_, resp := env.do(t, http.MethodPost, "/notifications", map[string]any{"target": "all", "text": "x"}, &managerActor)
	require.True(t, resp.Success, resp.Message)
	assert.EqualValues(t, 0, resp.Data.(map[string]any)["published"])

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateNotification_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, resp := env.do(t, http.MethodPost, "/notifications", map[string]any{"target": "everyone", "text": "x"}, &managerActor)
	assert.False(t, resp.Success)

	_, resp = env.do(t, http.MethodPost, "/notifications", map[string]any{"target": "all", "text": "x"}, &employeeActor)
	assert.Equal(t, "权限不足", resp.Message)

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetMyNotifications(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM notifications WHERE employee_id = \$1`).
		WithArgs("E1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "text", "is_read", "created_at"}).
			AddRow("n1", nil, "周五下午例会", false, testToday))

	_, resp := env.do(t, http.MethodGet, "/notifications", nil, &employeeActor)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, resp.Data, 1)

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestMarkNotificationRead(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectExec(`UPDATE notifications`).
		WithArgs("n1", "E1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(`UPDATE notifications`).
		WithArgs("n2", "E1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, resp := env.do(t, http.MethodPatch, "/notifications/n1/read", nil, &employeeActor)
	assert.True(t, resp.Success, resp.Message)

	_, resp = env.do(t, http.MethodPatch, "/notifications/n2/read", nil, &employeeActor)
	assert.False(t, resp.Success)
	assert.Equal(t, "通知不存在", resp.Message)

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetAllEmployees(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM employees ORDER BY full_name`).WillReturnRows(employeeRows("E1", "E2"))

	_, resp := env.do(t, http.MethodGet, "/employees", nil, &employeeActor)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, resp.Data, 2)

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestExportSchedule(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM employees`).WillReturnRows(employeeRows("E1"))
	env.mock.ExpectQuery(`FROM shifts WHERE date BETWEEN`).WillReturnRows(sqlmock.NewRows(shiftColumns))
	env.mock.ExpectQuery(`FROM schedule_preferences`).WillReturnRows(sqlmock.NewRows(preferenceColumns))

	rec, _ := env.do(t, http.MethodGet, "/schedule/2024-04/export", nil, &employeeActor)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestExportEmployeeCalendar(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM employees WHERE id = \$1`).
		WithArgs("E1").
		WillReturnRows(sqlmock.NewRows([]string{"full_name", "position", "email", "created_at"}).AddRow("王伟", nil, nil, testToday))
	env.mock.ExpectQuery(`FROM shifts WHERE employee_id = \$1 AND date BETWEEN`).
		WithArgs("E1", "2024-04-01", "2024-04-30").
		WillReturnRows(sqlmock.NewRows(shiftColumns).
			AddRow("s1", "E1", "2024-04-01", "scheduled", "09:00", "18:00", nil, nil, nil, testToday, testToday))

	rec, _ := env.do(t, http.MethodGet, "/schedule/2024-04/employees/E1/calendar", nil, &employeeActor)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BEGIN:VEVENT")
	assert.Contains(t, rec.Body.String(), "s1@workforce-manager")

	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestExportEmployeeCalendar_UnknownEmployee(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`FROM employees WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"full_name", "position", "email", "created_at"}))

	_, resp := env.do(t, http.MethodGet, "/schedule/2024-04/employees/ghost/calendar", nil, &employeeActor)
	assert.False(t, resp.Success)
	assert.Equal(t, "员工不存在", resp.Message)

	require.NoError(t, env.mock.ExpectationsWereMet())
}
