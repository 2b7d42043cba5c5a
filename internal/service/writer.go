package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/pixelpals/internal/realtime"
	"github.com/d60-Lab/pixelpals/pkg/logger"
)

// ErrQueueFull 写队列已满，任务被丢弃
var ErrQueueFull = errors.New("remote write queue full")

type writeOp int

const (
	opPush writeOp = iota + 1
	opUpdate
	opRemove
)

func (o writeOp) String() string {
	switch o {
	case opPush:
		return "push"
	case opUpdate:
		return "update"
	case opRemove:
		return "remove"
	}
	return "unknown"
}

type writeJob struct {
	op     writeOp
	path   string
	key    string
	value  any
	fields map[string]any
	done   func(error)
	enqAt  time.Time
}

// RemoteWriter 本地异步写外部存储：入队不阻塞，失败只记日志，不回滚本地状态。
// 同一 key 上的多个任务之间不保证顺序。
type RemoteWriter struct {
	store     realtime.Store
	ch        chan writeJob
	timeout   time.Duration
	metricsCh chan time.Duration
}

// NewRemoteWriter timeout 为 0 时不额外限时，仅依赖存储客户端自身的超时
func NewRemoteWriter(store realtime.Store, queueSize int, timeout time.Duration) *RemoteWriter {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &RemoteWriter{store: store, ch: make(chan writeJob, queueSize), timeout: timeout, metricsCh: make(chan time.Duration, 65536)}
}

// Start 启动若干 worker；返回的停止函数会先排空队列，直到 ctx 结束
func (w *RemoteWriter) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case job := <-w.ch:
					w.run(job)
				case <-stopCh:
					for {
						select {
						case job := <-w.ch:
							w.run(job)
						default:
							return
						}
					}
				}
			}
		}()
	}
	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stopCh) })
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *RemoteWriter) EnqueuePush(path string, value any, done func(error)) {
	w.enqueue(writeJob{op: opPush, path: path, value: value, done: done})
}

func (w *RemoteWriter) EnqueueUpdate(path, key string, fields map[string]any, done func(error)) {
	w.enqueue(writeJob{op: opUpdate, path: path, key: key, fields: fields, done: done})
}

func (w *RemoteWriter) EnqueueRemove(path, key string, done func(error)) {
	w.enqueue(writeJob{op: opRemove, path: path, key: key, done: done})
}

func (w *RemoteWriter) enqueue(job writeJob) {
	job.enqAt = time.Now()
	select {
	case w.ch <- job:
	default:
		logger.Warn("remote write queue full, drop", zap.Stringer("op", job.op), zap.String("path", job.path), zap.String("key", job.key))
		if job.done != nil {
			job.done(ErrQueueFull)
		}
	}
}

func (w *RemoteWriter) run(job writeJob) {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	var err error
	key := job.key
	switch job.op {
	case opPush:
		key, err = w.store.Push(ctx, job.path, job.value)
	case opUpdate:
		err = w.store.Update(ctx, job.path, job.key, job.fields)
	case opRemove:
		err = w.store.Remove(ctx, job.path, job.key)
	}

	if err != nil {
		logger.Error("remote write failed", zap.Stringer("op", job.op), zap.String("path", job.path), zap.String("key", key), zap.Error(err))
		sentry.CaptureException(err)
	} else {
		logger.Debug("remote write landed", zap.Stringer("op", job.op), zap.String("path", job.path), zap.String("key", key))
	}
	if job.done != nil {
		job.done(err)
	}
	select {
	case w.metricsCh <- time.Since(job.enqAt):
	default:
	}
}

// Metrics 返回写入落地耗时的只读通道（每处理一条发送一次 duration）。
func (w *RemoteWriter) Metrics() <-chan time.Duration { return w.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (w *RemoteWriter) QueueLen() int { return len(w.ch) }
