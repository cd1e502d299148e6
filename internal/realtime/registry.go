package realtime

import "sync"

// Registry はユーザーIDごとの接続集合（ルーム）を管理する。
// 同一ユーザーが複数タブ・複数端末から接続する場合があるため、
// ルームは接続の集合として持つ。
type Registry struct {
	// mu はroomsへのアクセスを保護する。
	mu sync.RWMutex
	// rooms はユーザーIDから接続集合へのマップ。
	rooms map[string]map[*Conn]struct{}
}

// NewRegistry は新しいレジストリを生成する。
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[*Conn]struct{}),
	}
}

// Bind は認証済みの接続をユーザーのルームに登録する。
func (r *Registry) Bind(userID string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[userID]
	if !ok {
		room = make(map[*Conn]struct{})
		r.rooms[userID] = room
	}
	room[conn] = struct{}{}
}

// Remove は接続をルームから除去する。空になったルームは破棄する。
// 未登録の接続を渡しても何もしない。
func (r *Registry) Remove(userID string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[userID]
	if !ok {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(r.rooms, userID)
	}
}

// Members はユーザーのルームに属する接続のスナップショットを返す。
func (r *Registry) Members(userID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[userID]
	conns := make([]*Conn, 0, len(room))
	for conn := range room {
		conns = append(conns, conn)
	}
	return conns
}

// RoomSize はユーザーのルームに属する接続数を返す。
func (r *Registry) RoomSize(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[userID])
}
