package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait は書き込みの最大待ち時間。
	writeWait = 10 * time.Second
	// pongWait はpong応答の最大待ち時間。
	pongWait = 60 * time.Second
	// pingPeriod はping送信の間隔。pongWaitより短くすること。
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize はクライアントから受け付けるメッセージの最大バイト数。
	maxMessageSize = 4096
	// sendBufferSize は送信チャネルのバッファ数。
	sendBufferSize = 32
)

// Conn は1本のWebSocket接続を表す。
// 送信はバッファ付きチャネル経由でwritePumpに一本化する。
type Conn struct {
	// ws は下位のWebSocket接続。
	ws *websocket.Conn
	// send は配信待ちメッセージのバッファ付きチャネル。
	send chan []byte
	// userID は認証済みユーザーのID。未認証の間は空。
	userID string

	// mu はclosedとsendへの書き込みを保護する。
	mu sync.Mutex
	// closed はsendチャネルがクローズ済みかどうか。
	closed bool
}

// newConn は新しい接続を生成する。
func newConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
	}
}

// trySend はメッセージの送信を試みる。
// バッファが満杯、または接続がクローズ済みの場合はfalseを返す。
// ブロックしないこと。遅いクライアントが配信側を巻き込んではならない。
func (c *Conn) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// close は送信チャネルをクローズしwritePumpを停止させる。
// 複数回呼んでも安全。
func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump はsendチャネルのメッセージをWebSocketへ書き出す。
// 接続ごとに1つのgoroutineで動かすこと。書き込みはここに一本化する。
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
