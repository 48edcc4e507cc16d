package replication

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client 观察端的 websocket 复制通道
//
// 读循环在独立 goroutine 中把消息放进收件箱，观察上下文在帧循环里取出。
type Client struct {
	conn  *websocket.Conn
	inbox *Inbox
	done  chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
}

// Dial 连接权威端
//
// 参数：
//   - ctx: 控制握手超时
//   - url: ws:// 或 wss:// 地址
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:  conn,
		inbox: NewInbox(),
		done:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Inbox 返回收件箱
func (c *Client) Inbox() *Inbox {
	return c.inbox
}

// Done 读循环结束时关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err 读循环结束的原因；主动 Close 时为 nil
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer c.inbox.Close()

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.mu.Lock()
			if !c.closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.err = err
			}
			c.mu.Unlock()
			return
		}
		if err := env.Validate(); err != nil {
			log.Printf("[ReplicationClient] skipping malformed envelope: %v", err)
			continue
		}
		c.inbox.push(env)
	}
}

// Close 关闭连接并等待读循环退出
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := c.conn.Close()
	<-c.done
	return err
}
