package sequences

import (
	"context"
	"log"
	"strings"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
)

const table = "id_sequences"

type Service struct {
	repo  Repository
	tx    Transactor
	clock ids.Clock
	id    ids.IDGen
	audit audit.Recorder
}

func NewService(repo Repository, tx Transactor, clock ids.Clock, id ids.IDGen, rec audit.Recorder) *Service {
	return &Service{repo: repo, tx: tx, clock: clock, id: id, audit: rec}
}

func normalizeKey(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

func (s *Service) List(ctx context.Context) ([]Sequence, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, key string) (*Sequence, error) {
	seq, err := s.repo.GetByKey(ctx, normalizeKey(key))
	if err != nil {
		if apperr.Is(apperr.Classify(err), apperr.CodeNotFound) {
			return nil, apperr.NotFound("sequence not found: " + key)
		}
		return nil, apperr.Classify(err)
	}
	return seq, nil
}

// Save はキー単位で作成・更新する。prefix / suffix は大文字化
func (s *Service) Save(ctx context.Context, actor string, req SaveRequest) (*Sequence, error) {
	key := normalizeKey(req.Key)
	if key == "" {
		return nil, apperr.Invalid("key is required")
	}
	cur, err := s.repo.GetByKey(ctx, key)
	if err != nil && !apperr.Is(apperr.Classify(err), apperr.CodeNotFound) {
		return nil, apperr.Classify(err)
	}
	now := s.clock.Now()
	seq := Sequence{Key: key, Padding: 4, NextNumber: 1, IsActive: true, CreatedAt: now}
	var old *Sequence
	if cur != nil {
		prev := *cur
		old, seq = &prev, *cur
	}
	seq.Description = strings.TrimSpace(req.Description)
	seq.Prefix = strings.ToUpper(strings.TrimSpace(req.Prefix))
	seq.Separator = req.Separator
	seq.Suffix = strings.ToUpper(strings.TrimSpace(req.Suffix))
	seq.TargetTable = strings.TrimSpace(req.TargetTable)
	seq.TargetColumn = strings.TrimSpace(req.TargetColumn)
	if req.Padding != nil {
		seq.Padding = *req.Padding
	}
	if req.NextNumber != nil {
		seq.NextNumber = *req.NextNumber
	}
	if req.IsActive != nil {
		seq.IsActive = *req.IsActive
	}
	seq.UpdatedAt = now

	switch {
	case seq.Padding < 0 || seq.Padding > maxPadding:
		return nil, apperr.Invalid("padding must be between 0 and 12")
	case seq.NextNumber < 1:
		return nil, apperr.Invalid("next_number must be at least 1")
	}
	if _, ok := targets[seq.Target()]; !ok {
		return nil, apperr.Invalid("unsupported target: " + seq.Target())
	}

	if old == nil {
		if seq.ID, err = s.id.New(); err != nil {
			return nil, apperr.Internal("failed to generate id")
		}
		if err := s.repo.Insert(ctx, &seq); err != nil {
			return nil, apperr.Classify(err)
		}
		s.audit.Record(ctx, actor, audit.ActionCreate, table, seq.ID, nil, seq)
		return &seq, nil
	}
	if err := s.repo.Update(ctx, &seq); err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, seq.ID, old, seq)
	return &seq, nil
}

// Next は行ロックを取って次の ID を払い出し、番号を進める
func (s *Service) Next(ctx context.Context, actor, key string) (string, error) {
	key = normalizeKey(key)
	var out string
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		seq, err := repo.LockByKey(ctx, key)
		if err != nil {
			if apperr.Is(apperr.Classify(err), apperr.CodeNotFound) {
				return apperr.NotFound("sequence not found: " + key)
			}
			return err
		}
		if !seq.IsActive {
			return apperr.Conflict("sequence is inactive: " + key)
		}
		out = seq.Format(seq.NextNumber)
		return repo.SetNext(ctx, seq.ID, seq.NextNumber+1, s.clock.Now())
	})
	if err != nil {
		return "", apperr.Classify(err)
	}
	log.Printf("[INFO] sequence issued key=%s id=%s by=%s", key, out, actor)
	return out, nil
}

// Validate は対象列の既存 ID を検査する
func (s *Service) Validate(ctx context.Context, key string) (*Validation, error) {
	seq, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	values, err := s.repo.Values(ctx, seq.Target())
	if err != nil {
		return nil, apperr.Classify(err)
	}
	v := Validate(*seq, values)
	return &v, nil
}
