package masterdata

import (
	"context"
	"sort"
	"strings"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
)

type Deps struct {
	Repo      Repository
	Tx        Transactor
	Clock     ids.Clock
	IDs       ids.IDGen
	Audit     audit.Recorder
	Publisher realtime.Publisher
}

type Service struct {
	repo  Repository
	tx    Transactor
	clock ids.Clock
	id    ids.IDGen
	audit audit.Recorder
	pub   realtime.Publisher
}

func NewService(d Deps) *Service {
	return &Service{repo: d.Repo, tx: d.Tx, clock: d.Clock, id: d.IDs, audit: d.Audit, pub: d.Publisher}
}

func parseBoolish(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "1" || s == "true" || s == "yes" || s == "all"
}

func normalizeName(k Kind, name string) (string, error) {
	name = employees.Sanitize(name)
	if name == "" {
		return "", apperr.Invalid(k.NameCol + " is required")
	}
	return name, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) conflictOr(k Kind, err error) error {
	if apperr.IsDuplicateKey(err) {
		return apperr.Conflict(k.Label + " code already exists")
	}
	return apperr.Classify(err)
}

func (s *Service) publish(k Kind, op realtime.Op, it *Item) {
	s.pub.Publish(realtime.Event{Table: k.Table, Op: op, RecordID: it.ID, Row: it, UpdatedAt: it.UpdatedAt})
}

// checkDepartment: 役職の所属部署は有効な部署であること
func (s *Service) checkDepartment(ctx context.Context, k Kind, deptID string) error {
	if !k.HasDepartment || deptID == "" {
		return nil
	}
	d, err := s.repo.Get(ctx, Departments, deptID)
	if err != nil {
		if apperr.Is(apperr.Classify(err), apperr.CodeNotFound) {
			return apperr.Invalid("department not found: " + deptID)
		}
		return apperr.Classify(err)
	}
	if !d.IsActive {
		return apperr.Invalid("department is inactive: " + d.Name)
	}
	return nil
}

func (s *Service) List(ctx context.Context, k Kind, all string) ([]Item, error) {
	out, err := s.repo.List(ctx, k, parseBoolish(all))
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, k Kind, id string) (*Item, error) {
	it, err := s.repo.Get(ctx, k, id)
	if err != nil {
		if apperr.Is(apperr.Classify(err), apperr.CodeNotFound) {
			return nil, apperr.NotFound(k.Label + " not found")
		}
		return nil, apperr.Classify(err)
	}
	return it, nil
}

func (s *Service) Create(ctx context.Context, actor string, k Kind, req CreateRequest) (*Item, error) {
	name, err := normalizeName(k, req.Name)
	if err != nil {
		return nil, err
	}
	it := &Item{
		Name:      name,
		Code:      normalizeCode(req.Code),
		IsActive:  true,
		CreatedBy: actor,
	}
	if k.HasDescription {
		it.Description = employees.Sanitize(req.Description)
	}
	if k.HasDepartment {
		it.DepartmentID = strings.TrimSpace(req.DepartmentID)
	}
	if err := s.checkDepartment(ctx, k, it.DepartmentID); err != nil {
		return nil, err
	}
	if it.ID, err = s.id.New(); err != nil {
		return nil, apperr.Internal("failed to generate id")
	}
	it.CreatedAt = s.clock.Now()
	it.UpdatedAt = it.CreatedAt

	if err := s.repo.Insert(ctx, k, it); err != nil {
		return nil, s.conflictOr(k, err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, k.Table, it.ID, nil, it)
	s.publish(k, realtime.OpInsert, it)
	return it, nil
}

func (s *Service) Update(ctx context.Context, actor string, k Kind, id string, req UpdateRequest) (*Item, error) {
	cur, err := s.Get(ctx, k, id)
	if err != nil {
		return nil, err
	}
	old := *cur
	if req.Name != nil {
		if cur.Name, err = normalizeName(k, *req.Name); err != nil {
			return nil, err
		}
	}
	if req.Code != nil {
		cur.Code = normalizeCode(*req.Code)
	}
	if req.Description != nil && k.HasDescription {
		cur.Description = employees.Sanitize(*req.Description)
	}
	if req.DepartmentID != nil && k.HasDepartment {
		cur.DepartmentID = strings.TrimSpace(*req.DepartmentID)
		if err := s.checkDepartment(ctx, k, cur.DepartmentID); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		cur.IsActive = *req.IsActive
	}
	cur.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, k, cur); err != nil {
		return nil, s.conflictOr(k, err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, k.Table, id, old, cur)
	s.publish(k, realtime.OpUpdate, cur)
	return cur, nil
}

// Disable は論理削除（is_active=false）
func (s *Service) Disable(ctx context.Context, actor string, k Kind, id string) error {
	cur, err := s.Get(ctx, k, id)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	if err := s.repo.Disable(ctx, k, id, now); err != nil {
		return apperr.Classify(err)
	}
	old := *cur
	cur.IsActive, cur.UpdatedAt = false, now
	s.audit.Record(ctx, actor, audit.ActionDelete, k.Table, id, old, cur)
	s.publish(k, realtime.OpUpdate, cur)
	return nil
}

// CleanPositions は取り込み候補の役職名を整える。
// 空・"#N/A"・"0"・"|" 始まりを除き、大文字小文字を無視して既存と重複するものを落とす
func CleanPositions(raw, existing []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[strings.ToLower(strings.TrimSpace(e))] = true
	}
	var out []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" || p == "#N/A" || p == "0" || strings.HasPrefix(p, "|") {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ImportPositionsFromStaging は staging にあって positions に無い役職を一括登録する
func (s *Service) ImportPositionsFromStaging(ctx context.Context, actor string) (*ImportResult, error) {
	res := &ImportResult{Imported: []Item{}}
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		raw, err := repo.StagingPositions(ctx)
		if err != nil {
			return err
		}
		existing, err := repo.List(ctx, Positions, true)
		if err != nil {
			return err
		}
		titles := make([]string, 0, len(existing))
		for _, p := range existing {
			titles = append(titles, p.Name)
		}
		fresh := CleanPositions(raw, titles)
		res.Skipped = len(CleanPositions(raw, nil)) - len(fresh)

		now := s.clock.Now()
		for _, title := range fresh {
			id, err := s.id.New()
			if err != nil {
				return apperr.Internal("failed to generate id")
			}
			it := Item{ID: id, Name: title, IsActive: true, CreatedBy: actor, CreatedAt: now, UpdatedAt: now}
			if err := repo.Insert(ctx, Positions, &it); err != nil {
				return err
			}
			res.Imported = append(res.Imported, it)
		}
		return nil
	})
	if err != nil {
		return nil, s.conflictOr(Positions, err)
	}
	if len(res.Imported) > 0 {
		s.audit.Record(ctx, actor, audit.ActionCreate, Positions.Table, "", nil, res.Imported)
		for i := range res.Imported {
			s.publish(Positions, realtime.OpInsert, &res.Imported[i])
		}
	}
	return res, nil
}
