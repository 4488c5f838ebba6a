package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/scheduler"
)

// 2024-03-15，只允许生成 2024-04
var testToday = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type publishedMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakePublisher struct {
	messages []publishedMessage
	err      error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{exchange: exchange, key: key, msg: msg})
	return nil
}

type testEnv struct {
	handler   *Handler
	db        *sql.DB
	mock      sqlmock.Sqlmock
	redis     *miniredis.Miniredis
	publisher *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.CookieName = "__ecnc_workforce_token"
	cfg.Redis.ConnectTimeout = 5
	cfg.Redis.GenerationLockTTL = 120
	cfg.RabbitMQ.PublishTimeout = 5
	cfg.RabbitMQ.Exchange = "notifications"
	cfg.Schedule.Timezone = "UTC"

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	repo := repository.NewRepository(cfg, db)
	sched := scheduler.New(repo, repo, repo,
		scheduler.WithClock(func() time.Time { return testToday }),
		scheduler.WithLocation(time.UTC),
	)
	publisher := &fakePublisher{}

	h, err := NewHandler(cfg, repo, sched, publisher, rdb)
	require.NoError(t, err)
	h.RegisterRoutes()

	return &testEnv{handler: h, db: db, mock: mock, redis: mr, publisher: publisher}
}

var (
	managerActor  = domain.Actor{ID: "M1", Role: domain.RoleManager}
	employeeActor = domain.Actor{ID: "E1", Role: domain.RoleEmployee}
)

func (env *testEnv) token(t *testing.T, actor domain.Actor) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	ss, err := token.SignedString([]byte(env.handler.config.JWT.Secret))
	require.NoError(t, err)
	return ss
}

// do 发送请求，actor 为 nil 时不带 cookie
func (env *testEnv) do(t *testing.T, method, path string, body any, actor *domain.Actor) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if actor != nil {
		req.AddCookie(&http.Cookie{Name: env.handler.config.JWT.CookieName, Value: env.token(t, *actor)})
	}

	rec := httptest.NewRecorder()
	env.handler.Mux.ServeHTTP(rec, req)

	var resp Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

var (
	employeeColumns   = []string{"id", "full_name", "position", "email", "created_at"}
	shiftColumns      = []string{"id", "employee_id", "date", "status", "start_time", "end_time", "reason", "replacement_employee_id", "updated_by", "created_at", "updated_at"}
	preferenceColumns = []string{"id", "employee_id", "date", "text", "created_at"}
)

func employeeRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows(employeeColumns)
	for _, id := range ids {
		rows.AddRow(id, "员工"+id, nil, id+"@example.com", testToday)
	}
	return rows
}

var errDatabaseDown = errors.New("connection refused")
