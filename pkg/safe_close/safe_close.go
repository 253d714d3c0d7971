// Package safe_close provides cooperative graceful shutdown for long-running services
// Package safe_close 为常驻服务提供协作式优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose coordinates a group of service goroutines
// Each attached function receives a done callback and a close signal channel;
// it must call done() when fully stopped
// SafeClose 协调一组服务 goroutine
// 每个挂载的函数会收到 done 回调和关闭信号通道；完全停止后必须调用 done()
type SafeClose struct {
	mu        sync.Mutex
	wg        sync.WaitGroup
	closeCh   chan struct{}
	closed    bool
	closeErr  error
	closeOnce sync.Once
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeCh: make(chan struct{}),
	}
}

// Attach registers a service goroutine
// The function is started immediately in its own goroutine
// Attach 注册一个服务 goroutine，函数会立即在独立 goroutine 中启动
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	done := func() {
		s.wg.Done()
	}
	go f(done, s.closeCh)
}

// SendCloseSignal broadcasts the close signal to all attached goroutines
// The first non-nil error wins and is returned by WaitClosed
// SendCloseSignal 向所有挂载的 goroutine 广播关闭信号
// 第一个非 nil 的错误会被保留并由 WaitClosed 返回
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.closeErr == nil {
		s.closeErr = err
	}
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.closeCh)
	})
}

// WaitClosed blocks until every attached goroutine has called done()
// Returns the error passed to the first SendCloseSignal, if any
// WaitClosed 阻塞直到所有挂载的 goroutine 都调用了 done()
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}

// CloseSignal returns the close signal channel
// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeCh
}

// IsClosed reports whether the close signal has been sent
// IsClosed 报告关闭信号是否已发送
func (s *SafeClose) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
