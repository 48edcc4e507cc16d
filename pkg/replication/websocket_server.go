package replication

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeTimeout 单条消息的写超时
const writeTimeout = 5 * time.Second

// clientConn 一个观察端连接
type clientConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *clientConn) writeEnvelope(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(env)
}

// Server 权威端的 websocket 复制通道
//
// 作为 http.Handler 挂载；每个连接进来的观察端先收到保留的归属与属性消息，
// 之后收到所有新发布的消息。观察端发来的数据被忽略。
type Server struct {
	mu       sync.Mutex
	seq      uint64
	clients  map[*clientConn]struct{}
	retained *retainedFacts
	upgrader websocket.Upgrader
	closed   bool
}

// NewServer 创建 websocket 复制通道
func NewServer() *Server {
	return &Server{
		clients:  make(map[*clientConn]struct{}),
		retained: newRetainedFacts(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// ServeHTTP 升级连接并持续服务，直到连接断开
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ReplicationServer] ws upgrade failed: %v", err)
		return
	}

	client := &clientConn{conn: conn}
	if err := s.addClient(client); err != nil {
		log.Printf("[ReplicationServer] rejecting observer %s: %v", r.RemoteAddr, err)
		_ = conn.Close()
		return
	}
	log.Printf("[ReplicationServer] observer connected: %s", r.RemoteAddr)

	defer func() {
		s.removeClient(client)
		_ = conn.Close()
		log.Printf("[ReplicationServer] observer disconnected: %s", r.RemoteAddr)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// addClient 注册连接并回放保留消息
// 回放与注册在同一把锁内完成，新发布的消息不会插到回放之前
func (s *Server) addClient(client *clientConn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrChannelClosed
	}

	for _, env := range s.retained.replay() {
		if err := client.writeEnvelope(env); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	}
	s.clients[client] = struct{}{}
	return nil
}

func (s *Server) removeClient(client *clientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
}

// Publish 广播消息给所有已连接的观察端
// 写失败的连接被断开，不影响其他观察端
func (s *Server) Publish(env Envelope) error {
	if err := env.Validate(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrChannelClosed
	}

	s.seq++
	env.Seq = s.seq
	s.retained.remember(env)

	for client := range s.clients {
		if err := client.writeEnvelope(env); err != nil {
			log.Printf("[ReplicationServer] dropping observer after write error: %v", err)
			delete(s.clients, client)
			_ = client.conn.Close()
		}
	}
	return nil
}

// ClientCount 当前连接的观察端数量
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close 断开所有观察端，之后的 Publish 返回 ErrChannelClosed
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for client := range s.clients {
		_ = client.conn.Close()
	}
	s.clients = make(map[*clientConn]struct{})
	return nil
}
