package crawlers

import (
	"context"
	"fmt"
	"sync"
)

// DetailJob 一个待抓取的详情页
type DetailJob struct {
	Index int    // 在数据行中的位置
	Link  string // 原始相对链接
	URL   string // 解析后的绝对URL
}

// DetailQueue 详情页任务队列
// 支持并发安全的Push/Pop, 关闭后Pop取完剩余任务再返回false
type DetailQueue struct {
	jobs chan DetailJob

	mu     sync.RWMutex
	closed bool
	pushed int
}

// NewDetailQueue 创建容量为size的队列
func NewDetailQueue(size int) *DetailQueue {
	if size < 1 {
		size = 1
	}
	return &DetailQueue{jobs: make(chan DetailJob, size)}
}

// Push 添加任务, 队列已关闭时返回错误
func (q *DetailQueue) Push(job DetailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("队列已关闭")
	}

	select {
	case q.jobs <- job:
		q.pushed++
		return nil
	default:
		return fmt.Errorf("队列已满 (容量 %d)", cap(q.jobs))
	}
}

// Pop 取出一个任务
// 队列关闭且为空时返回false; ctx取消时返回ctx的错误
func (q *DetailQueue) Pop(ctx context.Context) (DetailJob, bool, error) {
	select {
	case job, ok := <-q.jobs:
		return job, ok, nil
	case <-ctx.Done():
		return DetailJob{}, false, ctx.Err()
	}
}

// Close 关闭队列, 可重复调用
func (q *DetailQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

// Len 待处理任务数
func (q *DetailQueue) Len() int {
	return len(q.jobs)
}

// Pushed 累计入队任务数
func (q *DetailQueue) Pushed() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pushed
}
