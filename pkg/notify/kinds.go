package notify

import "fmt"

// Type は通知の種別を表す。
type Type string

const (
	// TypeOrderCreated は新しい注文が作成されたことを表す。
	TypeOrderCreated Type = "order_created"
	// TypeOrderStatus は注文のステータスが変更されたことを表す。
	TypeOrderStatus Type = "order_status"
	// TypeFarmerRegistered は農家が新規登録され承認待ちであることを表す。
	TypeFarmerRegistered Type = "farmer_registered"
	// TypeLowStock は商品の在庫が残り少ないことを表す。
	TypeLowStock Type = "low_stock"
	// TypeProductAdded はフォロー中の農家が商品を追加したことを表す。
	TypeProductAdded Type = "product_added"
	// TypeOrderCompleted は注文が完了したことを表す。
	TypeOrderCompleted Type = "order_completed"
)

// Valid は既知の通知種別であるかを返す。
func (t Type) Valid() bool {
	switch t {
	case TypeOrderCreated, TypeOrderStatus, TypeFarmerRegistered,
		TypeLowStock, TypeProductAdded, TypeOrderCompleted:
		return true
	}
	return false
}

// Metadata は通知に付随する関連エンティティへの弱参照。
// いずれもIDのみを保持し、参照先の取得は受信側のルックアップに委ねる。
type Metadata struct {
	// OrderID は関連する注文のID。
	OrderID string
	// ProductID は関連する商品のID。
	ProductID string
	// SourceUserID は通知の発生元ユーザーのID。
	SourceUserID string
}

// Kind は通知1種別分のペイロードと本文テンプレートを表す。
// 各バリアントがタイトル・メッセージ・リンク・メタデータを組み立てる。
type Kind interface {
	// Type は通知の種別を返す。
	Type() Type
	// Title は通知のタイトルを返す。
	Title() string
	// Message は通知メッセージを返す。
	Message() string
	// Link は通知に紐づく画面パスを返す。空の場合はリンクなし。
	Link() string
	// Metadata は関連エンティティへの参照を返す。
	Metadata() Metadata
}

// OrderCreated は農家への新規注文通知。
type OrderCreated struct {
	// OrderID は作成された注文のID。
	OrderID string
	// ConsumerName は注文した消費者の表示名。
	ConsumerName string
	// TotalPrice は注文の合計金額。
	TotalPrice float64
}

// Type は通知の種別を返す。
func (OrderCreated) Type() Type { return TypeOrderCreated }

// Title は通知のタイトルを返す。
func (OrderCreated) Title() string { return "🎉 New Order Received!" }

// Message は消費者名と合計金額を含む通知メッセージを返す。
func (k OrderCreated) Message() string {
	return fmt.Sprintf("%s placed an order worth ₹%.2f", k.ConsumerName, k.TotalPrice)
}

// Link は注文一覧画面のパスを返す。
func (OrderCreated) Link() string { return "/orders" }

// Metadata は関連する注文IDを返す。
func (k OrderCreated) Metadata() Metadata { return Metadata{OrderID: k.OrderID} }

// OrderStatus は消費者への注文ステータス変更通知。
type OrderStatus struct {
	// OrderID はステータスが変更された注文のID。
	OrderID string
	// FarmerName は注文を処理する農家の表示名。
	FarmerName string
	// Status は変更後のステータス。
	Status string
}

// Type は通知の種別を返す。
func (OrderStatus) Type() Type { return TypeOrderStatus }

// Title は変更後ステータスに応じたタイトルを返す。
func (k OrderStatus) Title() string {
	switch k.Status {
	case "confirmed":
		return "✅ Order Confirmed"
	case "ready":
		return "📦 Order Ready"
	case "completed":
		return "🎊 Order Completed"
	case "cancelled":
		return "❌ Order Cancelled"
	}
	return "Order " + k.Status
}

// Message は変更後ステータスに応じた通知メッセージを返す。
func (k OrderStatus) Message() string {
	switch k.Status {
	case "confirmed":
		return k.FarmerName + " confirmed your order"
	case "ready":
		return "Your order is ready for pickup/delivery"
	case "completed":
		return "Your order has been completed"
	case "cancelled":
		return "Your order has been cancelled"
	}
	return "Order status updated to " + k.Status
}

// Link は注文一覧画面のパスを返す。
func (OrderStatus) Link() string { return "/orders" }

// Metadata は関連する注文IDを返す。
func (k OrderStatus) Metadata() Metadata { return Metadata{OrderID: k.OrderID} }

// FarmerRegistered は管理者への農家新規登録通知。
type FarmerRegistered struct {
	// FarmerID は登録した農家のユーザーID。
	FarmerID string
	// FarmerName は登録した農家の表示名。
	FarmerName string
}

// Type は通知の種別を返す。
func (FarmerRegistered) Type() Type { return TypeFarmerRegistered }

// Title は通知のタイトルを返す。
func (FarmerRegistered) Title() string { return "👨‍🌾 New Farmer Registration" }

// Message は農家名を含む通知メッセージを返す。
func (k FarmerRegistered) Message() string {
	return k.FarmerName + " registered and needs approval"
}

// Link は管理画面のパスを返す。
func (FarmerRegistered) Link() string { return "/admin" }

// Metadata は登録した農家のユーザーIDを発生元として返す。
func (k FarmerRegistered) Metadata() Metadata { return Metadata{SourceUserID: k.FarmerID} }

// LowStock は農家への在庫僅少通知。
type LowStock struct {
	// ProductID は在庫が少なくなった商品のID。
	ProductID string
	// ProductName は在庫が少なくなった商品名。
	ProductName string
	// Quantity は残りの在庫数。
	Quantity int64
}

// Type は通知の種別を返す。
func (LowStock) Type() Type { return TypeLowStock }

// Title は通知のタイトルを返す。
func (LowStock) Title() string { return "⚠️ Low Stock Alert" }

// Message は商品名と残数を含む通知メッセージを返す。
func (k LowStock) Message() string {
	return fmt.Sprintf("%s is running low (%d left)", k.ProductName, k.Quantity)
}

// Link は農家ダッシュボードのパスを返す。
func (LowStock) Link() string { return "/farmer" }

// Metadata は関連する商品IDを返す。
func (k LowStock) Metadata() Metadata { return Metadata{ProductID: k.ProductID} }

// ProductAdded は消費者への新商品追加通知。
type ProductAdded struct {
	// ProductID は追加された商品のID。
	ProductID string
	// FarmerName は商品を追加した農家の表示名。
	FarmerName string
	// ProductName は追加された商品名。
	ProductName string
}

// Type は通知の種別を返す。
func (ProductAdded) Type() Type { return TypeProductAdded }

// Title は通知のタイトルを返す。
func (ProductAdded) Title() string { return "🌾 New Product Available" }

// Message は農家名と商品名を含む通知メッセージを返す。
func (k ProductAdded) Message() string {
	return k.FarmerName + " added " + k.ProductName
}

// Link は商品詳細画面のパスを返す。
func (k ProductAdded) Link() string { return "/product/" + k.ProductID }

// Metadata は関連する商品IDを返す。
func (k ProductAdded) Metadata() Metadata { return Metadata{ProductID: k.ProductID} }

// OrderCompleted は消費者への注文完了通知。
type OrderCompleted struct {
	// OrderID は完了した注文のID。
	OrderID string
}

// Type は通知の種別を返す。
func (OrderCompleted) Type() Type { return TypeOrderCompleted }

// Title は通知のタイトルを返す。
func (OrderCompleted) Title() string { return "🎊 Order Completed" }

// Message は通知メッセージを返す。
func (OrderCompleted) Message() string { return "Your order has been completed" }

// Link は注文一覧画面のパスを返す。
func (OrderCompleted) Link() string { return "/orders" }

// Metadata は関連する注文IDを返す。
func (k OrderCompleted) Metadata() Metadata { return Metadata{OrderID: k.OrderID} }
