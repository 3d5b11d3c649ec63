package audit

import (
	"context"
	"encoding/json"
	"log"

	"hrms-backend/internal/platform/ids"
)

// Recorder は他パッケージが監査ログを書くための口
type Recorder interface {
	Record(ctx context.Context, actor, action, table, recordID string, oldValues, newValues any)
}

type Service struct {
	repo  Repository
	clock ids.Clock
	id    ids.IDGen
}

func NewService(repo Repository, clock ids.Clock, id ids.IDGen) *Service {
	return &Service{repo: repo, clock: clock, id: id}
}

// Record は失敗しても呼び出し元の操作を失敗させない（WARN ログのみ）
func (s *Service) Record(ctx context.Context, actor, action, table, recordID string, oldValues, newValues any) {
	id, err := s.id.New()
	if err != nil {
		log.Printf("[WARN] audit: id generation failed: %v", err)
		return
	}
	e := &Entry{
		ID:        id,
		Actor:     actor,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		OldValues: marshal(oldValues),
		NewValues: marshal(newValues),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		log.Printf("[WARN] audit: insert failed table=%s record=%s action=%s: %v", table, recordID, action, err)
	}
}

func marshal(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func (s *Service) List(ctx context.Context, f Filter, p Page) ([]Entry, int64, error) {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return s.repo.List(ctx, f, p)
}

// Nop: 監査不要な文脈用
type Nop struct{}

func (Nop) Record(context.Context, string, string, string, string, any, any) {}
