package handler

type ContextKey string

var (
	ActorCtx         ContextKey = "actor"
	ScheduleMonthCtx ContextKey = "scheduleMonth"
	EmployeeInfoCtx  ContextKey = "employeeInfo"
)
