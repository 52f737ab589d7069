package cron

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

// Recoverer 处理遗留的 in_flight 开通意图
type Recoverer interface {
	Recover(ctx context.Context) (*service.RecoveryReport, error)
}

// Pruner 清理历史记录
type Pruner interface {
	Prune(ctx context.Context, dryRun bool) (*service.RetentionReport, error)
}

type Service struct {
	recoverer        Recoverer
	pruner           Pruner
	recoveryInterval time.Duration
	pruneInterval    time.Duration
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// NewService recoverer 或 pruner 为空时跳过对应任务
func NewService(recoverer Recoverer, pruner Pruner, recoveryInterval time.Duration) *Service {
	if recoveryInterval <= 0 {
		recoveryInterval = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		recoverer:        recoverer,
		pruner:           pruner,
		recoveryInterval: recoveryInterval,
		pruneInterval:    time.Hour,
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Start 启动定时任务，恢复任务在启动时立即执行一次
func (s *Service) Start() {
	if s.recoverer != nil {
		s.wg.Add(1)
		go s.runRecovery()
	}
	if s.pruner != nil {
		s.wg.Add(1)
		go s.runPrune()
	}
	log.Info().Dur("recovery_interval", s.recoveryInterval).Msg("Cron service started (provisioning recovery + retention)")
}

// Stop 停止定时任务并等待正在执行的任务返回
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Cron service stopped")
}

func (s *Service) runRecovery() {
	defer s.wg.Done()

	s.RecoverNow()

	ticker := time.NewTicker(s.recoveryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RecoverNow()
		}
	}
}

func (s *Service) runPrune() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.PruneNow()
		}
	}
}

// RecoverNow 立即执行一次恢复扫描
func (s *Service) RecoverNow() *service.RecoveryReport {
	report, err := s.recoverer.Recover(s.ctx)
	if err != nil {
		if s.ctx.Err() == nil {
			log.Error().Err(err).Msg("provisioning recovery failed")
		}
		return report
	}
	if report != nil && report.Scanned > 0 {
		log.Info().
			Int("scanned", report.Scanned).
			Int("completed", report.Completed).
			Int("rolled_back", report.RolledBack).
			Int("retried", report.Retried).
			Int("orphaned", report.Orphaned).
			Msg("provisioning recovery summary")
	}
	return report
}

// PruneNow 立即执行一次清理
func (s *Service) PruneNow() *service.RetentionReport {
	report, err := s.pruner.Prune(s.ctx, false)
	if err != nil && s.ctx.Err() == nil {
		log.Error().Err(err).Msg("retention prune failed")
	}
	return report
}
