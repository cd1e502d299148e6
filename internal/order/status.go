package order

// Status は注文のライフサイクル上の状態を表す。
type Status string

const (
	// StatusPending は注文直後の未確定状態。
	StatusPending Status = "pending"
	// StatusConfirmed は農家が注文を確定した状態。
	StatusConfirmed Status = "confirmed"
	// StatusReady は商品の受け渡し準備が完了した状態。
	StatusReady Status = "ready"
	// StatusCompleted は受け渡しが完了した終端状態。
	StatusCompleted Status = "completed"
	// StatusCancelled はキャンセルされた終端状態。
	StatusCancelled Status = "cancelled"
)

// Valid は既知のステータスであるかを返す。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// transitions は許可される遷移のホワイトリスト。
// ここに列挙されていない遷移はすべて拒否する。後戻りは許可しない。
// completedとcancelledは終端状態でありどこへも遷移できない。
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo は現在のステータスからnextへの遷移が許可されているかを返す。
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}
