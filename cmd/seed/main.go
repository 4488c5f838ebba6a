package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 为下个月插入随机意愿, 3: 导入花名册 CSV)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量，或每名员工最多的意愿天数")
	flag.StringVar(&csvPath, "csv", "", "花名册 CSV 路径，默认读取配置 SEED_CSV_PATH")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
		} else {
			cnt := 0
			for i := 0; i < n; i++ {
				employee := utils.GenerateRandomEmployee(cfg.Seed.Employee.Positions, cfg.Email.UserDomain)

				// 随机生成的邮箱可能重复
				if exists, err := repo.CheckEmailIfExists(*employee.Email); err != nil {
					slog.Error("无法检查邮箱", slog.String("error", err.Error()))
					continue
				} else if exists {
					continue
				}

				if err := repo.CreateEmployee(employee); err != nil {
					slog.Error("无法插入员工", slog.String("error", err.Error()))
					continue
				}

				cnt++
			}

			slog.Info("插入员工成功", slog.Int("count", cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的意愿天数")
			return
		}

		loc, err := cfg.Location()
		if err != nil {
			slog.Error("无法加载时区", slog.String("error", err.Error()))
			return
		}
		window := calendar.MonthOf(time.Now().In(loc)).Next().Window()

		employees, err := repo.GetAllEmployees()
		if err != nil {
			slog.Error("无法获取所有员工", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, employee := range employees {
			for _, preference := range utils.GenerateRandomPreferences(employee, window, n) {
				if err := repo.UpsertPreference(preference); err != nil {
					slog.Error("无法插入意愿", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}
		}

		slog.Info("插入意愿成功", slog.Int("count", cnt))
	case 3:
		if csvPath == "" {
			csvPath = cfg.Seed.CSVPath
		}
		seed.SeedRoster(repo, csvPath)
	default:
		slog.Error("指定的操作非法")
	}
}
