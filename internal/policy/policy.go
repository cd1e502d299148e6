// Package policy はリソースに対する操作の認可判定を提供する。
//
// 認可ルールをハンドラ内の条件分岐に埋め込まず、
// (actor, resource, action) から許可/拒否を返す単一の関数に集約する。
// 状態を変更する操作の前に必ずこの判定を通すこと。
package policy

// Action はリソースに対する操作の種類を表す。
type Action string

const (
	// ActionTransitionOrder は注文のステータス遷移。
	ActionTransitionOrder Action = "order:transition"
	// ActionViewOrder は注文の参照。
	ActionViewOrder Action = "order:view"
	// ActionMutateNotification は通知の既読化・削除。
	ActionMutateNotification Action = "notification:mutate"
)

// Resource は認可判定の対象リソースを表す。
// 判定に必要な所有関係のIDのみを保持する弱参照の集合。
type Resource struct {
	// Kind はリソースの種類（"order" または "notification"）。
	Kind string
	// ConsumerID は注文した消費者のユーザーID（注文のみ）。
	ConsumerID string
	// FarmerID は注文を処理する農家のユーザーID（注文のみ）。
	FarmerID string
	// RecipientID は通知の受信者のユーザーID（通知のみ）。
	RecipientID string
}

// Order は注文リソースの認可判定用表現を生成する。
func Order(consumerID, farmerID string) Resource {
	return Resource{Kind: "order", ConsumerID: consumerID, FarmerID: farmerID}
}

// Notification は通知リソースの認可判定用表現を生成する。
func Notification(recipientID string) Resource {
	return Resource{Kind: "notification", RecipientID: recipientID}
}

// Decide はactorがresourceに対してactionを実行できるかを判定する。
// 未知のアクションは常に拒否する。
func Decide(actorID string, resource Resource, action Action) bool {
	if actorID == "" {
		return false
	}

	switch action {
	case ActionTransitionOrder:
		// ステータス遷移は農家のみ。消費者に遷移権限はない（意図的な非対称）。
		return resource.Kind == "order" && actorID == resource.FarmerID
	case ActionViewOrder:
		return resource.Kind == "order" &&
			(actorID == resource.ConsumerID || actorID == resource.FarmerID)
	case ActionMutateNotification:
		return resource.Kind == "notification" && actorID == resource.RecipientID
	}
	return false
}
