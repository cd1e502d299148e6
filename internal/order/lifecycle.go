// Package order は注文のライフサイクル管理を提供する。
//
// 注文は pending から始まり、農家の操作によって
// confirmed / ready / completed / cancelled へ遷移する。
// ステータス更新は楽観的な条件付きUPDATEで行い、
// 同時更新で条件が崩れた場合は競合として呼び出し元へ返す。
package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/mandi/internal/notification"
	orderdb "github.com/nao1215/mandi/internal/order/db"
	"github.com/nao1215/mandi/internal/policy"
	"github.com/nao1215/mandi/pkg/notify"
)

var (
	// ErrValidation は注文のパラメータが不正な場合のエラー。
	ErrValidation = errors.New("注文のパラメータが不正です")
	// ErrNotFound は注文が存在しない場合のエラー。
	ErrNotFound = errors.New("注文が見つかりません")
	// ErrForbidden は操作の権限がない場合のエラー。
	ErrForbidden = errors.New("この注文を操作する権限がありません")
	// ErrInvalidTransition は許可されていないステータス遷移のエラー。
	ErrInvalidTransition = errors.New("許可されていないステータス遷移です")
	// ErrConflict は同時更新によってステータス更新の前提が崩れた場合のエラー。
	ErrConflict = errors.New("注文が同時に更新されました")
)

// priceTolerance は合計金額の検証で許容する誤差。
const priceTolerance = 0.01

// deliveryModes は受け取り方法の許可リスト。
var deliveryModes = map[string]bool{
	"pickup":   true,
	"delivery": true,
}

// Item は注文に含まれる商品1件を表す。
type Item struct {
	// ProductID は商品の一意識別子。
	ProductID string
	// Name は注文時点の商品名のスナップショット。
	Name string
	// Price は注文時点の単価のスナップショット。
	Price float64
	// Quantity は注文数量。
	Quantity int64
}

// CreateInput は注文作成の入力。
type CreateInput struct {
	// FarmerID は注文先の農家のユーザーID。
	FarmerID string
	// Items は注文する商品の一覧。
	Items []Item
	// TotalPrice は注文の合計金額。商品の小計と一致すること。
	TotalPrice float64
	// DeliveryMode は受け取り方法（pickup または delivery）。空の場合はpickup。
	DeliveryMode string
	// DeliveryAddress は配達先住所。DeliveryModeがdeliveryの場合に必須。
	DeliveryAddress string
}

// Order は注文の完全な表現。
type Order struct {
	// ID は注文の一意識別子。
	ID string
	// ConsumerID は注文した消費者のユーザーID。
	ConsumerID string
	// FarmerID は注文先の農家のユーザーID。
	FarmerID string
	// Items は注文に含まれる商品の一覧。
	Items []Item
	// TotalPrice は注文の合計金額。
	TotalPrice float64
	// DeliveryMode は受け取り方法。
	DeliveryMode string
	// DeliveryAddress は配達先住所。
	DeliveryAddress string
	// Status は注文の現在のステータス。
	Status Status
	// CreatedAt は注文の作成日時。
	CreatedAt time.Time
	// UpdatedAt は注文の最終更新日時。
	UpdatedAt time.Time
}

// NameResolver はユーザーIDから表示名を解決する。
type NameResolver interface {
	// DisplayName はユーザーの表示名を返す。解決できない場合はユーザーIDを返す。
	DisplayName(ctx context.Context, userID string) string
}

// Manager は注文のアプリケーションサービス。
type Manager struct {
	// db はトランザクション開始用のデータベース接続。
	db *sql.DB
	// queries は注文テーブルへのクエリ群。
	queries *orderdb.Queries
	// notifier は注文イベントの通知サービス。
	notifier *notification.Service
	// names は通知メッセージ用の表示名リゾルバ。
	names NameResolver
}

// NewManager は新しい注文マネージャを生成する。
func NewManager(sqlDB *sql.DB, notifier *notification.Service, names NameResolver) *Manager {
	return &Manager{
		db:       sqlDB,
		queries:  orderdb.New(sqlDB),
		notifier: notifier,
		names:    names,
	}
}

// Create は注文を作成し、農家へ新規注文の通知を送る。
// 注文と注文商品の挿入は1トランザクションで行う。通知の失敗は注文を失敗させない。
func (m *Manager) Create(ctx context.Context, consumerID string, input CreateInput) (Order, error) {
	if err := validateCreate(consumerID, input); err != nil {
		return Order{}, err
	}

	mode := input.DeliveryMode
	if mode == "" {
		mode = "pickup"
	}

	orderID := uuid.NewString()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("トランザクションの開始に失敗: %w", err)
	}
	defer tx.Rollback()

	qtx := m.queries.WithTx(tx)
	if err := qtx.CreateOrder(ctx, orderdb.CreateOrderParams{
		ID:              orderID,
		ConsumerID:      consumerID,
		FarmerID:        input.FarmerID,
		TotalPrice:      input.TotalPrice,
		DeliveryMode:    mode,
		DeliveryAddress: nullString(input.DeliveryAddress),
		Status:          string(StatusPending),
	}); err != nil {
		return Order{}, fmt.Errorf("注文の保存に失敗: %w", err)
	}

	for _, item := range input.Items {
		if err := qtx.CreateOrderItem(ctx, orderdb.CreateOrderItemParams{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}); err != nil {
			return Order{}, fmt.Errorf("注文商品の保存に失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}

	order, err := m.load(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	consumerName := m.names.DisplayName(ctx, consumerID)
	if _, err := m.notifier.Notify(ctx, input.FarmerID, notify.OrderCreated{
		OrderID:      orderID,
		ConsumerName: consumerName,
		TotalPrice:   input.TotalPrice,
	}); err != nil {
		log.Printf("新規注文通知の送信に失敗: %v", err)
	}

	return order, nil
}

// Transition は注文のステータスを遷移させ、消費者へ通知を送る。
// 遷移できるのは注文先の農家のみ。更新は現在のステータスを条件とする
// 条件付きUPDATEで行い、別の更新に先を越された場合はErrConflictを返す。
// ErrInvalidTransitionとErrConflictの場合は注文の現在の状態も返す。
func (m *Manager) Transition(ctx context.Context, orderID, actorID string, next Status) (Order, error) {
	if !next.Valid() {
		return Order{}, ErrValidation
	}

	order, err := m.load(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	if !policy.Decide(actorID, policy.Order(order.ConsumerID, order.FarmerID), policy.ActionTransitionOrder) {
		return Order{}, ErrForbidden
	}

	if !order.Status.CanTransitionTo(next) {
		return order, ErrInvalidTransition
	}

	affected, err := m.queries.UpdateOrderStatus(ctx, orderdb.UpdateOrderStatusParams{
		Status:     string(next),
		ID:         orderID,
		PrevStatus: string(order.Status),
	})
	if err != nil {
		return Order{}, fmt.Errorf("注文ステータスの更新に失敗: %w", err)
	}
	if affected == 0 {
		// 読み取りから更新までの間に別の遷移が先行した
		current, loadErr := m.load(ctx, orderID)
		if loadErr != nil {
			return Order{}, loadErr
		}
		return current, ErrConflict
	}

	updated, err := m.load(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	farmerName := m.names.DisplayName(ctx, order.FarmerID)
	if _, err := m.notifier.Notify(ctx, order.ConsumerID, notify.OrderStatus{
		OrderID:    orderID,
		FarmerName: farmerName,
		Status:     string(next),
	}); err != nil {
		log.Printf("ステータス変更通知の送信に失敗: %v", err)
	}

	return updated, nil
}

// Get は注文を取得する。参照できるのは注文の当事者のみ。
func (m *Manager) Get(ctx context.Context, orderID, actorID string) (Order, error) {
	order, err := m.load(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	if !policy.Decide(actorID, policy.Order(order.ConsumerID, order.FarmerID), policy.ActionViewOrder) {
		return Order{}, ErrForbidden
	}
	return order, nil
}

// ListForUser はユーザーが当事者である注文を新しい順に返す。
// 消費者としての注文と農家としての注文の両方を含む。
func (m *Manager) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := m.queries.ListOrdersByUserID(ctx, orderdb.ListOrdersByUserIDParams{
		ConsumerID: userID,
		FarmerID:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("注文一覧の取得に失敗: %w", err)
	}

	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		items, err := m.queries.ListOrderItemsByOrderID(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("注文商品の取得に失敗: %w", err)
		}
		orders = append(orders, toOrder(row, items))
	}
	return orders, nil
}

// load は注文と注文商品を取得する。
func (m *Manager) load(ctx context.Context, orderID string) (Order, error) {
	row, err := m.queries.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("注文の取得に失敗: %w", err)
	}

	items, err := m.queries.ListOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("注文商品の取得に失敗: %w", err)
	}
	return toOrder(row, items), nil
}

// validateCreate は注文作成の入力を検証する。
func validateCreate(consumerID string, input CreateInput) error {
	if consumerID == "" || input.FarmerID == "" {
		return ErrValidation
	}
	if consumerID == input.FarmerID {
		return ErrValidation
	}
	if len(input.Items) == 0 {
		return ErrValidation
	}
	if input.DeliveryMode != "" && !deliveryModes[input.DeliveryMode] {
		return ErrValidation
	}
	if input.DeliveryMode == "delivery" && input.DeliveryAddress == "" {
		return ErrValidation
	}

	var sum float64
	for _, item := range input.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Price < 0 {
			return ErrValidation
		}
		sum += item.Price * float64(item.Quantity)
	}
	if input.TotalPrice <= 0 || math.Abs(sum-input.TotalPrice) > priceTolerance {
		return ErrValidation
	}
	return nil
}

// toOrder はDBの行をOrderに変換する。
func toOrder(row orderdb.Order, items []orderdb.OrderItem) Order {
	converted := make([]Item, 0, len(items))
	for _, item := range items {
		converted = append(converted, Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return Order{
		ID:              row.ID,
		ConsumerID:      row.ConsumerID,
		FarmerID:        row.FarmerID,
		Items:           converted,
		TotalPrice:      row.TotalPrice,
		DeliveryMode:    row.DeliveryMode,
		DeliveryAddress: row.DeliveryAddress.String,
		Status:          Status(row.Status),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// nullString は空文字列をNULLとして扱うsql.NullStringを生成する。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
