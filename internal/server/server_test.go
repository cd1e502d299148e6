package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nao1215/mandi/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWT署名鍵。
const testSecret = "test-secret-key"

// setupTestServer はインメモリSQLiteでサーバー全体を構築する。
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("JWT_SECRET", testSecret)

	s, err := NewServer("0")
	if err != nil {
		t.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	t.Cleanup(func() { s.db.Close() })
	return s
}

// mintToken はテスト用のJWTトークンを発行する。
func mintToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.GenerateJWT(testSecret, userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("JWTトークンの発行に失敗: %v", err)
	}
	return token
}

// doAuthedRequest はBearerトークン付きのHTTPリクエストを実行する。
func doAuthedRequest(s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// parseJSON はレスポンスボディをmapにデコードするヘルパー関数。
func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// TestHealthCheck はヘルスチェックエンドポイントの正常動作を検証する。
func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	w := doAuthedRequest(s, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	result := parseJSON(t, w)
	if result["status"] != "ok" {
		t.Errorf("status: got %v, want ok", result["status"])
	}
	if result["service"] != "mandi" {
		t.Errorf("service: got %v, want mandi", result["service"])
	}
}

// TestAPIRequiresAuth はREST APIがJWT認証必須であることを検証する。
func TestAPIRequiresAuth(t *testing.T) {
	s := setupTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/notifications"},
	}
	for _, p := range paths {
		w := doAuthedRequest(s, p.method, p.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s のステータスコード: got %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}
	}

	// 不正なトークンも拒否される
	w := doAuthedRequest(s, http.MethodGet, "/api/v1/orders", "invalid-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("不正トークンのステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestOrderNotificationFlow は注文作成から通知既読までの一連のフローを検証する。
func TestOrderNotificationFlow(t *testing.T) {
	s := setupTestServer(t)
	consumerToken := mintToken(t, "consumer-1")
	farmerToken := mintToken(t, "farmer-1")

	// 消費者が注文を作成する
	createBody := map[string]any{
		"farmer_id": "farmer-1",
		"products": []map[string]any{
			{"product_id": "product-1", "name": "Tomatoes", "price": 150, "quantity": 2},
		},
		"total_price":   300,
		"delivery_mode": "pickup",
	}
	w := doAuthedRequest(s, http.MethodPost, "/api/v1/orders", consumerToken, createBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("注文作成のステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
	orderID, _ := parseJSON(t, w)["id"].(string)
	if orderID == "" {
		t.Fatal("注文IDが空です")
	}

	// 農家に新規注文通知が届いている
	w2 := doAuthedRequest(s, http.MethodGet, "/api/v1/notifications", farmerToken, nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("通知一覧のステータスコード: got %d, want %d", w2.Code, http.StatusOK)
	}
	farmerResult := parseJSON(t, w2)
	farmerNotifs, _ := farmerResult["notifications"].([]any)
	if len(farmerNotifs) != 1 {
		t.Fatalf("農家の通知の数: got %d, want 1", len(farmerNotifs))
	}
	if farmerResult["unread_count"] != float64(1) {
		t.Errorf("農家の未読件数: got %v, want 1", farmerResult["unread_count"])
	}

	// 農家が注文を確定する
	w3 := doAuthedRequest(s, http.MethodPut, "/api/v1/orders/"+orderID+"/status", farmerToken, map[string]string{"status": "confirmed"})
	if w3.Code != http.StatusOK {
		t.Fatalf("ステータス更新のステータスコード: got %d, want %d, body=%s", w3.Code, http.StatusOK, w3.Body.String())
	}

	// 消費者による遷移は拒否される
	w4 := doAuthedRequest(s, http.MethodPut, "/api/v1/orders/"+orderID+"/status", consumerToken, map[string]string{"status": "cancelled"})
	if w4.Code != http.StatusForbidden {
		t.Errorf("消費者による遷移のステータスコード: got %d, want %d", w4.Code, http.StatusForbidden)
	}

	// 消費者にステータス変更通知が届いている
	w5 := doAuthedRequest(s, http.MethodGet, "/api/v1/notifications", consumerToken, nil)
	consumerResult := parseJSON(t, w5)
	consumerNotifs, _ := consumerResult["notifications"].([]any)
	if len(consumerNotifs) != 1 {
		t.Fatalf("消費者の通知の数: got %d, want 1", len(consumerNotifs))
	}
	notif, _ := consumerNotifs[0].(map[string]any)
	if notif["type"] != "order_status" {
		t.Errorf("通知type: got %v, want order_status", notif["type"])
	}

	// 通知を既読にすると未読件数が0になる
	notifID, _ := notif["id"].(string)
	w6 := doAuthedRequest(s, http.MethodPut, "/api/v1/notifications/"+notifID+"/read", consumerToken, nil)
	if w6.Code != http.StatusOK {
		t.Errorf("既読化のステータスコード: got %d, want %d", w6.Code, http.StatusOK)
	}
	w7 := doAuthedRequest(s, http.MethodGet, "/api/v1/notifications", consumerToken, nil)
	if got := parseJSON(t, w7)["unread_count"]; got != float64(0) {
		t.Errorf("既読後の未読件数: got %v, want 0", got)
	}
}

// TestWebSocketRealtimeDelivery はWebSocket認証とリアルタイム配信を検証する。
func TestWebSocketRealtimeDelivery(t *testing.T) {
	s := setupTestServer(t)
	consumerToken := mintToken(t, "consumer-1")
	farmerToken := mintToken(t, "farmer-1")

	ts := httptest.NewServer(s.router)
	t.Cleanup(ts.Close)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	// 農家がWebSocket接続して認証する
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket接続に失敗: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	if err := ws.WriteJSON(map[string]string{"event": "authenticate", "token": farmerToken}); err != nil {
		t.Fatalf("authenticateイベントの送信に失敗: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	var authFrame struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := ws.ReadJSON(&authFrame); err != nil {
		t.Fatalf("認証応答の読み取りに失敗: %v", err)
	}
	if authFrame.Event != "authenticated" {
		t.Fatalf("イベント: got %q, want authenticated", authFrame.Event)
	}
	if authFrame.Data["user_id"] != "farmer-1" {
		t.Errorf("user_id: got %v, want farmer-1", authFrame.Data["user_id"])
	}

	// 消費者が注文を作成すると農家のWebSocketへ通知が配信される
	createBody := map[string]any{
		"farmer_id": "farmer-1",
		"products": []map[string]any{
			{"product_id": "product-1", "name": "Tomatoes", "price": 150, "quantity": 2},
		},
		"total_price": 300,
	}
	w := doAuthedRequest(s, http.MethodPost, "/api/v1/orders", consumerToken, createBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("注文作成のステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	var notifFrame struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := ws.ReadJSON(&notifFrame); err != nil {
		t.Fatalf("通知フレームの読み取りに失敗: %v", err)
	}
	if notifFrame.Event != "notification" {
		t.Errorf("イベント: got %q, want notification", notifFrame.Event)
	}
	if notifFrame.Data["type"] != "order_created" {
		t.Errorf("通知type: got %v, want order_created", notifFrame.Data["type"])
	}
	if notifFrame.Data["is_new"] != true {
		t.Errorf("is_new: got %v, want true", notifFrame.Data["is_new"])
	}

	// リアルタイム配信されてもREST取得では未読として残っている
	w2 := doAuthedRequest(s, http.MethodGet, "/api/v1/notifications", farmerToken, nil)
	if got := parseJSON(t, w2)["unread_count"]; got != float64(1) {
		t.Errorf("未読件数: got %v, want 1", got)
	}
}
