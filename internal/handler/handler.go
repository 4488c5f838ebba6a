package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/scheduler"
)

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	scheduler   *scheduler.Scheduler
	translator  ut.Translator
	publisher   Publisher
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, sched *scheduler.Scheduler, publisher Publisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		scheduler:   sched,
		translator:  trans,
		publisher:   publisher,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 登录由统一身份服务负责，这里只校验其签发的令牌
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/employees", h.GetAllEmployees)

		r.Route("/schedule/{month}", func(r chi.Router) {
			r.Use(h.scheduleMonth)
			r.Get("/", h.GetSchedule)
			r.Get("/export", h.ExportSchedule)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Put("/shifts/{employeeID}/{date}", h.UpdateShift)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/generate", h.GenerateSchedule)
			r.Route("/employees/{employeeID}", func(r chi.Router) {
				r.Use(h.employeeInfo)
				r.Get("/calendar", h.ExportEmployeeCalendar)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateNotification)
			r.Get("/", h.GetMyNotifications)
			r.Patch("/{id}/read", h.MarkNotificationRead)
		})
	})
}
