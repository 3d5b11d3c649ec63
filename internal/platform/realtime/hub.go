// Package realtime はテーブル単位の変更通知をプロセス内で配信する。
//
// 同一行への更新は updated_at による後勝ち。既に配信済みの版より古い更新は捨てる。
// 受信が遅い購読者はイベントを取りこぼす（発行側はブロックしない）。
package realtime

import (
	"sync"
	"sync/atomic"
	"time"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

type Event struct {
	Table     string    `json:"table"`
	Op        Op        `json:"op"`
	RecordID  string    `json:"record_id"`
	Row       any       `json:"row,omitempty"`
	Old       any       `json:"old,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher は各機能パッケージが受け取るインターフェース
type Publisher interface {
	Publish(ev Event) bool
}

type Subscription struct {
	table   string
	ch      chan Event
	hub     *Hub
	dropped atomic.Int64
	once    sync.Once
}

func (s *Subscription) C() <-chan Event { return s.ch }

// Dropped: バッファ溢れで捨てた件数
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

type Hub struct {
	mu     sync.Mutex
	buffer int
	subs   map[string]map[*Subscription]struct{}
	// table/record_id -> 最後に配信した updated_at
	last map[string]time.Time
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[string]map[*Subscription]struct{}),
		last:   make(map[string]time.Time),
	}
}

func (h *Hub) Subscribe(table string) *Subscription {
	s := &Subscription{table: table, ch: make(chan Event, h.buffer), hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.subs[table]
	if !ok {
		m = make(map[*Subscription]struct{})
		h.subs[table] = m
	}
	m[s] = struct{}{}
	return s
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[s.table]; ok {
		delete(m, s)
		if len(m) == 0 {
			delete(h.subs, s.table)
		}
	}
	close(s.ch)
}

// Tracked: 後勝ち判定のために版を保持している行数
func (h *Hub) Tracked() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.last)
}

func (h *Hub) SubscriberCount(table string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[table])
}

// Publish は古い版なら false を返して配信しない
func (h *Hub) Publish(ev Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.RecordID != "" {
		key := ev.Table + "/" + ev.RecordID
		prev, seen := h.last[key]
		if seen && !ev.UpdatedAt.IsZero() && ev.UpdatedAt.Before(prev) {
			return false
		}
		switch {
		case ev.Op == OpDelete:
			// 削除済みの行は以後追跡しない
			delete(h.last, key)
		case !ev.UpdatedAt.IsZero():
			h.last[key] = ev.UpdatedAt
		}
	}

	for s := range h.subs[ev.Table] {
		select {
		case s.ch <- ev:
		default:
			s.dropped.Add(1)
		}
	}
	return true
}

// Nop は通知不要な場面（CLI など）で使う
type Nop struct{}

func (Nop) Publish(Event) bool { return true }
