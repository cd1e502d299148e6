// Package server はマーケットプレイスサーバーの組み立てとルーティングを提供する。
//
// 注文・通知・リアルタイム配信の各コンポーネントを1つのHTTPサーバーに束ねる。
// REST APIはJWT認証必須、WebSocketは接続後のauthenticateイベントで認証する。
package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/mandi/internal/directory"
	"github.com/nao1215/mandi/internal/notification"
	notificationdb "github.com/nao1215/mandi/internal/notification/db"
	"github.com/nao1215/mandi/internal/order"
	"github.com/nao1215/mandi/internal/realtime"
	"github.com/nao1215/mandi/internal/store"
	"github.com/nao1215/mandi/pkg/middleware"
)

// Server はマーケットプレイスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// gateway はWebSocketのリアルタイム配信ゲートウェイ。
	gateway *realtime.Gateway
	// notifications は通知のアプリケーションサービス。
	notifications *notification.Service
	// orders は注文のアプリケーションサービス。
	orders *order.Manager
}

// NewServer は新しいマーケットプレイスサーバーを生成する。
// SQLiteデータベースの初期化とマイグレーションを行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := store.Open(getEnvOr("DB_PATH", "/data/mandi.db"))
	if err != nil {
		return nil, fmt.Errorf("データベースの初期化に失敗: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:5173")
	directoryURL := getEnvOr("DIRECTORY_URL", "http://localhost:8081")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{frontendURL}))

	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry, func(token string) (string, error) {
		claims, err := middleware.VerifyToken(jwtSecret, token)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	})

	notifications := notification.NewService(notificationdb.New(sqlDB), gateway)
	orders := order.NewManager(sqlDB, notifications, directory.NewClient(directoryURL))

	s := &Server{
		router:        router,
		port:          port,
		db:            sqlDB,
		jwtSecret:     jwtSecret,
		gateway:       gateway,
		notifications: notifications,
		orders:        orders,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(s.jwtSecret))
	{
		order.NewHandler(s.orders).Register(api)

		notificationHandler := notification.NewHandler(s.notifications)
		notificationHandler.Register(api)

		// 通知作成（内部API - 他サービスから呼び出される）
		internal := api.Group("/internal")
		notificationHandler.RegisterInternal(internal)
	}

	// WebSocketはヘッダーでJWTを渡せないため、接続後のauthenticateイベントで認証する
	s.router.GET("/ws", s.gateway.Handle())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mandi"})
	})
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
