// Package directory はユーザーディレクトリサービスへのクライアントを提供する。
//
// ユーザーIDから表示名を解決する。通知メッセージの組み立てにのみ使用し、
// 取得に失敗しても呼び出し元の操作は失敗させない。
package directory

import (
	"context"
	"log"

	"github.com/nao1215/mandi/pkg/httpclient"
)

// Client はユーザーディレクトリサービスへのHTTPクライアント。
type Client struct {
	// http はディレクトリサービスへの通信クライアント。
	http *httpclient.Client
}

// NewClient は新しいディレクトリクライアントを生成する。
func NewClient(baseURL string) *Client {
	return &Client{http: httpclient.New(baseURL)}
}

// userResponse はディレクトリサービスのユーザー情報レスポンス。
type userResponse struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Name はユーザーの表示名。
	Name string `json:"name"`
}

// DisplayName はユーザーIDから表示名を解決する。
// 取得に失敗した場合や表示名が空の場合はユーザーIDをそのまま返す。
func (c *Client) DisplayName(ctx context.Context, userID string) string {
	var u userResponse
	if err := c.http.GetJSON(ctx, "/api/v1/users/"+userID, &u); err != nil {
		log.Printf("表示名の取得に失敗したためユーザーIDで代替します: %v", err)
		return userID
	}
	if u.Name == "" {
		return userID
	}
	return u.Name
}
