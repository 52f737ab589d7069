package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/database"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/logger"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

// 写入 config.yaml 中的默认套餐，重复执行只更新已有记录
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if len(cfg.Plans) == 0 {
		log.Warn().Msg("no plans configured, nothing to seed")
		return
	}

	n, err := service.NewPlanService(repository.NewPlanRepository(db)).Seed(cfg.Plans)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed plans")
	}
	log.Info().Int("plans", n).Msg("plans seeded")
}
