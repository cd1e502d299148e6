// Package notification は通知の永続化・配信・既読管理を提供する。
//
// 通知はまずDBへ保存し、その後WebSocket経由でベストエフォート配信する。
// 配信に失敗しても保存済みの通知は次回のREST取得で届くため、
// 配信失敗は呼び出し元のエラーにしない。
package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/mandi/internal/notification/db"
	"github.com/nao1215/mandi/internal/policy"
	"github.com/nao1215/mandi/pkg/notify"
)

// listLimit は1回の取得で返す通知の最大件数。
const listLimit = 50

var (
	// ErrValidation は通知種別やパラメータが不正な場合のエラー。
	ErrValidation = errors.New("通知のパラメータが不正です")
	// ErrNotFound は通知が存在しない、または他ユーザーの通知の場合のエラー。
	// 他ユーザーの通知の存在を漏らさないため、権限エラーとは区別しない。
	ErrNotFound = errors.New("通知が見つかりません")
)

// Deliverer は保存済み通知のリアルタイム配信先。
// 実際に送信できた接続数を返す。
type Deliverer interface {
	// Deliver はユーザー宛てにデータを配信し、送信できた接続数を返す。
	Deliver(userID string, data any) int
}

// PayloadMetadata は通知ペイロードに含める関連エンティティへの参照。
type PayloadMetadata struct {
	// OrderID は関連する注文のID。
	OrderID string `json:"order_id,omitempty"`
	// ProductID は関連する商品のID。
	ProductID string `json:"product_id,omitempty"`
	// SourceUserID は通知の発生元ユーザーのID。
	SourceUserID string `json:"source_user_id,omitempty"`
}

// Payload はRESTレスポンスとWebSocket配信で共通の通知表現。
type Payload struct {
	// ID は通知の一意識別子。
	ID string `json:"id"`
	// UserID は通知の受信者のユーザーID。
	UserID string `json:"user_id"`
	// Type は通知の種別。
	Type string `json:"type"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// Link は通知に紐づく画面パス。
	Link string `json:"link,omitempty"`
	// Read は既読かどうか。
	Read bool `json:"read"`
	// Metadata は関連エンティティへの参照。
	Metadata PayloadMetadata `json:"metadata"`
	// CreatedAt は通知の作成日時。
	CreatedAt time.Time `json:"created_at"`
	// IsNew はリアルタイム配信時にのみ付与される新着フラグ。
	// 永続化されず、REST取得のレスポンスには含まれない。
	IsNew bool `json:"is_new,omitempty"`
}

// Service は通知のアプリケーションサービス。
type Service struct {
	// queries は通知テーブルへのクエリ群。
	queries *db.Queries
	// deliverer はリアルタイム配信先。
	deliverer Deliverer
}

// NewService は新しい通知サービスを生成する。
func NewService(queries *db.Queries, deliverer Deliverer) *Service {
	return &Service{queries: queries, deliverer: deliverer}
}

// Notify は通知を永続化し、その後リアルタイム配信を試みる。
// 保存に失敗した場合のみエラーを返す。配信失敗はログに残すだけにする。
func (s *Service) Notify(ctx context.Context, userID string, kind notify.Kind) (Payload, error) {
	if userID == "" || !kind.Type().Valid() {
		return Payload{}, ErrValidation
	}

	id := uuid.NewString()
	meta := kind.Metadata()
	if err := s.queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID:               id,
		UserID:           userID,
		Type:             string(kind.Type()),
		Title:            kind.Title(),
		Message:          kind.Message(),
		Link:             nullString(kind.Link()),
		RelatedOrderID:   nullString(meta.OrderID),
		RelatedProductID: nullString(meta.ProductID),
		SourceUserID:     nullString(meta.SourceUserID),
	}); err != nil {
		return Payload{}, fmt.Errorf("通知の保存に失敗: %w", err)
	}

	row, err := s.queries.GetNotification(ctx, db.GetNotificationParams{ID: id, UserID: userID})
	if err != nil {
		return Payload{}, fmt.Errorf("保存した通知の取得に失敗: %w", err)
	}

	payload := payloadFromRow(row)
	payload.IsNew = true
	if delivered := s.deliverer.Deliver(userID, payload); delivered == 0 {
		// 受信者がオフラインでも保存済みなので次回のREST取得で届く
		log.Printf("ユーザー %s はオフラインのためリアルタイム配信をスキップ", userID)
	}
	payload.IsNew = false
	return payload, nil
}

// List は最新の通知を最大50件と未読件数を返す。
func (s *Service) List(ctx context.Context, userID string) ([]Payload, int64, error) {
	rows, err := s.queries.ListNotificationsByUserID(ctx, db.ListNotificationsByUserIDParams{
		UserID: userID,
		Limit:  listLimit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}

	unread, err := s.queries.CountUnreadByUserID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("未読件数の取得に失敗: %w", err)
	}

	payloads := make([]Payload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, payloadFromRow(row))
	}
	return payloads, unread, nil
}

// MarkRead は通知を既読にする。既読済みの通知に対しても成功を返す（冪等）。
// 存在しない通知と他ユーザーの通知はどちらもErrNotFoundを返す。
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	row, err := s.queries.GetNotification(ctx, db.GetNotificationParams{ID: notificationID, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("通知の取得に失敗: %w", err)
	}

	if !policy.Decide(userID, policy.Notification(row.UserID), policy.ActionMutateNotification) {
		return ErrNotFound
	}

	if _, err := s.queries.MarkAsRead(ctx, db.MarkAsReadParams{ID: notificationID, UserID: userID}); err != nil {
		return fmt.Errorf("通知の既読化に失敗: %w", err)
	}
	return nil
}

// MarkAllRead はユーザーの未読通知をすべて既読にし、更新件数を返す。
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := s.queries.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("通知の一括既読化に失敗: %w", err)
	}
	return updated, nil
}

// Delete は通知を削除する。
// 存在しない通知と他ユーザーの通知はどちらもErrNotFoundを返す。
func (s *Service) Delete(ctx context.Context, userID, notificationID string) error {
	deleted, err := s.queries.DeleteNotification(ctx, db.DeleteNotificationParams{ID: notificationID, UserID: userID})
	if err != nil {
		return fmt.Errorf("通知の削除に失敗: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRead はユーザーの既読通知をすべて削除し、削除件数を返す。
func (s *Service) ClearRead(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.queries.DeleteReadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("既読通知の削除に失敗: %w", err)
	}
	return deleted, nil
}

// payloadFromRow はDBの行を通知ペイロードに変換する。
func payloadFromRow(row db.Notification) Payload {
	return Payload{
		ID:      row.ID,
		UserID:  row.UserID,
		Type:    row.Type,
		Title:   row.Title,
		Message: row.Message,
		Link:    row.Link.String,
		Read:    row.IsRead != 0,
		Metadata: PayloadMetadata{
			OrderID:      row.RelatedOrderID.String,
			ProductID:    row.RelatedProductID.String,
			SourceUserID: row.SourceUserID.String,
		},
		CreatedAt: row.CreatedAt,
	}
}

// nullString は空文字列をNULLとして扱うsql.NullStringを生成する。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
