package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/email"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/metrics"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
)

// MaxAttempts 单个邮件任务的最大发送次数
const MaxAttempts = 3

// JobQueue 邮件任务队列
type JobQueue interface {
	Push(ctx context.Context, job *queue.EmailJob) error
	Pop(ctx context.Context, timeout time.Duration) (*queue.EmailJob, error)
}

// Processor 邮件任务处理器
type Processor struct {
	sender email.Sender
	from   string
	jobs   JobQueue
}

// NewProcessor 创建邮件任务处理器，jobs 为空时失败的任务不会重新入队
func NewProcessor(sender email.Sender, from string, jobs JobQueue) *Processor {
	return &Processor{
		sender: sender,
		from:   from,
		jobs:   jobs,
	}
}

// Process 渲染并发送一封邮件
func (p *Processor) Process(ctx context.Context, job *queue.EmailJob) error {
	if job.To == "" {
		metrics.EmailsTotal.WithLabelValues(job.Template, "invalid").Inc()
		return fmt.Errorf("email job %q has no recipient", job.Template)
	}

	msg, err := email.Render(job.Template, job.Lang, job.Data)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(job.Template, "invalid").Inc()
		return fmt.Errorf("render %s: %w", job.Template, err)
	}
	msg.From = p.from
	msg.To = job.To

	if err := p.sender.Send(ctx, msg); err != nil {
		metrics.EmailsTotal.WithLabelValues(job.Template, "failed").Inc()
		return p.retry(ctx, job, err)
	}

	metrics.EmailsTotal.WithLabelValues(job.Template, "sent").Inc()
	log.Info().
		Str("template", job.Template).
		Str("to", job.To).
		Int64("user_id", job.UserID).
		Msg("email sent")
	return nil
}

// retry 发送失败且未超过次数时重新入队
func (p *Processor) retry(ctx context.Context, job *queue.EmailJob, cause error) error {
	job.Attempt++
	if p.jobs == nil || job.Attempt >= MaxAttempts {
		return fmt.Errorf("send %s to %s after %d attempts: %w", job.Template, job.To, job.Attempt, cause)
	}
	if err := p.jobs.Push(ctx, job); err != nil {
		return fmt.Errorf("requeue %s: %w (send error: %v)", job.Template, err, cause)
	}
	log.Warn().
		Err(cause).
		Str("template", job.Template).
		Int("attempt", job.Attempt).
		Msg("email send failed, requeued")
	return nil
}

// Run 启动 workers 个协程消费队列，ctx 取消后等待全部退出
func (p *Processor) Run(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Processor) loop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", workerID).Msg("worker shutting down")
			return
		default:
		}

		job, err := p.jobs.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("worker", workerID).Msg("failed to pop email job")
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue // 超时，继续等待
		}

		if err := p.Process(ctx, job); err != nil {
			log.Error().
				Err(err).
				Int("worker", workerID).
				Str("template", job.Template).
				Msg("email job failed")
		}
	}
}
