package replication

import "sync"

// Inbox 订阅者的收件箱
//
// 发布方（可能在其他 goroutine）追加消息，所属上下文在自己的帧循环里 Drain。
// 队列无上限：归属消息不能丢，观察端每帧都会取空。
type Inbox struct {
	mu      sync.Mutex
	pending []Envelope
	closed  bool
}

// NewInbox 创建空收件箱
func NewInbox() *Inbox {
	return &Inbox{}
}

// push 追加消息，已关闭时丢弃并返回 false
func (in *Inbox) push(env Envelope) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return false
	}
	in.pending = append(in.pending, env)
	return true
}

// Drain 取出全部待处理消息（按到达顺序）
func (in *Inbox) Drain() []Envelope {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.pending) == 0 {
		return nil
	}
	out := in.pending
	in.pending = nil
	return out
}

// Len 待处理消息数
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending)
}

// Close 关闭收件箱，之后的消息被丢弃
func (in *Inbox) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
}

// Closed 是否已关闭
func (in *Inbox) Closed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}
