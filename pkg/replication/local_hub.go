package replication

import (
	"fmt"
	"sync"
)

// LocalHub 进程内复制通道
//
// 一个权威上下文发布，任意数量的观察上下文（包括权威上下文自己）订阅。
// 新订阅者会先收到保留的归属与属性消息。
type LocalHub struct {
	mu       sync.Mutex
	seq      uint64
	inboxes  map[*Inbox]struct{}
	retained *retainedFacts
	closed   bool
}

// NewLocalHub 创建进程内复制通道
func NewLocalHub() *LocalHub {
	return &LocalHub{
		inboxes:  make(map[*Inbox]struct{}),
		retained: newRetainedFacts(),
	}
}

// Publish 广播消息给所有订阅者
func (h *LocalHub) Publish(env Envelope) error {
	if err := env.Validate(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrChannelClosed
	}

	h.seq++
	env.Seq = h.seq
	h.retained.remember(env)
	for inbox := range h.inboxes {
		inbox.push(env)
	}
	return nil
}

// Join 订阅通道，返回收件箱
func (h *LocalHub) Join() (*Inbox, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrChannelClosed
	}

	inbox := NewInbox()
	for _, env := range h.retained.replay() {
		inbox.push(env)
	}
	h.inboxes[inbox] = struct{}{}
	return inbox, nil
}

// Leave 取消订阅并关闭收件箱
func (h *LocalHub) Leave(inbox *Inbox) {
	h.mu.Lock()
	delete(h.inboxes, inbox)
	h.mu.Unlock()
	inbox.Close()
}

// SubscriberCount 当前订阅者数量
func (h *LocalHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.inboxes)
}

// Close 关闭通道和所有收件箱
func (h *LocalHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for inbox := range h.inboxes {
		inbox.Close()
	}
	h.inboxes = make(map[*Inbox]struct{})
	return nil
}
