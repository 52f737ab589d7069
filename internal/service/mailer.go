package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
)

// EmailQueue 邮件任务队列，由 worker 消费
type EmailQueue interface {
	Push(ctx context.Context, job *queue.EmailJob) error
}

// enqueueEmail 投递邮件任务，失败不影响主流程
func enqueueEmail(ctx context.Context, q EmailQueue, job *queue.EmailJob) {
	if q == nil {
		return
	}
	if err := q.Push(ctx, job); err != nil {
		log.Error().Err(err).
			Str("template", job.Template).
			Int64("user_id", job.UserID).
			Msg("failed to enqueue email")
	}
}
