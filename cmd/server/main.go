// マーケットプレイスサーバーのエントリポイント。
// 注文のライフサイクル管理・通知の永続化・WebSocketによる
// リアルタイム配信を1つのサーバーで提供する。
package main

import (
	"log"
	"os"

	"github.com/nao1215/mandi/internal/server"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv, err := server.NewServer(port)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}

	log.Printf("マーケットプレイスサーバーを起動します: :%s", port)
	if err := srv.Run(); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}
