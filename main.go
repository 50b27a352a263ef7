// @title StudyPulse 后端 API
// @version 1.0
// @description StudyPulse 学习平台的后端服务。

// @host localhost:8000
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"studypulse_backend/internal/app"
	"studypulse_backend/internal/config"
	"studypulse_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.String("seed", "", "导入 YAML 内容文件后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *seed != "" {
		report, err := app.RunSeed(context.Background(), cfg, *seed)
		if err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		logger.Log.Info("Seed finished",
			zap.Int("courses_created", report.CoursesCreated),
			zap.Int("courses_skipped", report.CoursesSkipped),
		)
		logger.Log.Sync()
		return
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
