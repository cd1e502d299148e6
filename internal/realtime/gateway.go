// Package realtime はWebSocketによる通知のリアルタイム配信を提供する。
//
// 接続はまず未認証で受け付け、authenticateイベントでJWTを検証してから
// ユーザーIDのルームに登録する。配信はベストエフォートの最大1回で、
// 受信者がオフラインでもエラーにしない。
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// VerifyFunc はハンドシェイク時のトークン検証関数。
// 検証に成功した場合はユーザーIDを返す。
type VerifyFunc func(token string) (string, error)

// Gateway はWebSocket接続の受付と通知配信を担う。
type Gateway struct {
	// registry はユーザーIDごとの接続レジストリ。
	registry *Registry
	// upgrader はHTTPからWebSocketへのアップグレーダ。
	upgrader websocket.Upgrader
	// verify はauthenticateイベントのトークン検証関数。
	verify VerifyFunc
}

// NewGateway は新しいゲートウェイを生成する。
func NewGateway(registry *Registry, verify VerifyFunc) *Gateway {
	return &Gateway{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// オリジン検証はCORSミドルウェアと同様にフロントエンド側で担保する。
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		verify: verify,
	}
}

// clientFrame はクライアントから受信するイベントフレーム。
type clientFrame struct {
	// Event はイベント名。
	Event string `json:"event"`
	// Token はauthenticateイベントのJWTトークン。
	Token string `json:"token"`
}

// serverFrame はクライアントへ送信するイベントフレーム。
type serverFrame struct {
	// Event はイベント名。
	Event string `json:"event"`
	// Data はイベントのペイロード。
	Data any `json:"data"`
}

// Handle はWebSocket接続を受け付けるginハンドラを返す。
func (g *Gateway) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocketへのアップグレードに失敗: %v", err)
			return
		}

		conn := newConn(ws)
		go conn.writePump()
		g.readPump(conn)
	}
}

// readPump はクライアントからのフレームを処理する。
// 接続が切れたらルームから除去して終了する。
func (g *Gateway) readPump(conn *Conn) {
	defer func() {
		if conn.userID != "" {
			g.registry.Remove(conn.userID, conn)
		}
		conn.close()
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocketの読み取りに失敗: %v", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			g.sendEvent(conn, "error", gin.H{"message": "不正なフレーム形式です"})
			continue
		}

		switch frame.Event {
		case "authenticate":
			g.authenticate(conn, frame.Token)
		default:
			// 未知のイベントは無視する
		}
	}
}

// authenticate はトークンを検証し、接続をユーザーのルームに登録する。
// 検証に失敗しても接続は閉じない。クライアントは再試行できる。
func (g *Gateway) authenticate(conn *Conn, token string) {
	userID, err := g.verify(token)
	if err != nil {
		log.Printf("WebSocketの認証に失敗: %v", err)
		g.sendEvent(conn, "authentication_error", gin.H{"message": "認証に失敗しました"})
		return
	}

	// 再認証の場合は旧ルームから外してから付け替える
	if conn.userID != "" && conn.userID != userID {
		g.registry.Remove(conn.userID, conn)
	}
	conn.userID = userID
	g.registry.Bind(userID, conn)
	g.sendEvent(conn, "authenticated", gin.H{"user_id": userID})
}

// sendEvent はイベントフレームを1接続に送信する。
func (g *Gateway) sendEvent(conn *Conn, event string, data any) {
	message, err := json.Marshal(serverFrame{Event: event, Data: data})
	if err != nil {
		log.Printf("イベントのエンコードに失敗: %v", err)
		return
	}
	conn.trySend(message)
}

// Deliver はユーザーのルームに属する全接続へ通知を配信し、
// 実際に送信できた接続数を返す。ルームが空の場合は0を返す。
func (g *Gateway) Deliver(userID string, data any) int {
	message, err := json.Marshal(serverFrame{Event: "notification", Data: data})
	if err != nil {
		log.Printf("通知のエンコードに失敗: %v", err)
		return 0
	}

	delivered := 0
	for _, conn := range g.registry.Members(userID) {
		if conn.trySend(message) {
			delivered++
		}
	}
	return delivered
}
