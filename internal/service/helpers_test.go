package service

import (
	"context"
	"sync"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/odoo"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/pubsub"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
)

// fakeGateway 记录 CreateDatabase 调用，databases 模拟 Odoo 上已存在的库
type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	existsErr error
	calls     []odoo.CreateDatabaseRequest
	databases map[string]bool
	// block 非空时 CreateDatabase 会等待它关闭
	block chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{databases: map[string]bool{}}
}

func (g *fakeGateway) CreateDatabase(ctx context.Context, req odoo.CreateDatabaseRequest) error {
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.createErr != nil {
		return g.createErr
	}
	g.databases[req.Name] = true
	return nil
}

func (g *fakeGateway) DatabaseExists(_ context.Context, name string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.existsErr != nil {
		return false, g.existsErr
	}
	return g.databases[name], nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeEmailQueue struct {
	mu   sync.Mutex
	jobs []*queue.EmailJob
	err  error
}

func (q *fakeEmailQueue) Push(_ context.Context, job *queue.EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeEmailQueue) templates() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	names := make([]string, 0, len(q.jobs))
	for _, job := range q.jobs {
		names = append(names, job.Template)
	}
	return names
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []*pubsub.NotificationMessage
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, msg *pubsub.NotificationMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}
