package staging

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hrms-backend/internal/identity"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/realtime"
)

type batchRun struct {
	stages   []Stage
	current  int
	progress ProgressFunc
}

func (b *batchRun) emit() {
	if b.progress == nil {
		return
	}
	cp := make([]Stage, len(b.stages))
	copy(cp, b.stages)
	b.progress(cp, b.current)
}

func (b *batchRun) start(i int) {
	b.current = i
	b.stages[i].Status = StageRunning
	b.emit()
}

func (b *batchRun) done(i int, count int, details string) {
	b.stages[i].Status = StageCompleted
	b.stages[i].Count = count
	b.stages[i].Details = details
	b.emit()
}

func (b *batchRun) fail(i int, details string) {
	b.stages[i].Status = StageError
	b.stages[i].Details = details
	b.emit()
}

// PromoteFromRawAttendance は生打刻（直接もしくは user_id マッピング経由）に現れる
// 社員番号を持つ staging 行を本番へ昇格し、昇格できた行だけを staging から消す。
// 1 行の失敗で全体は止めない。本番に既にある employee_id は昇格しない。
func (s *Service) PromoteFromRawAttendance(ctx context.Context, actor string, progress ProgressFunc) (*BatchResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperr.Busy("staging promotion is already running")
	}
	defer s.running.Store(false)

	run := &batchRun{stages: newStages(), progress: progress}
	res := &BatchResult{Failures: []RowFailure{}}
	finish := func() *BatchResult {
		res.Stages = run.stages
		return res
	}
	halt := func(stage int, reason string) (*BatchResult, error) {
		run.fail(stage, reason)
		res.Halted = true
		res.HaltReason = reason
		log.Printf("[WARN] staging batch halted: %s", reason)
		return finish(), nil
	}
	stageErr := func(stage int, err error) (*BatchResult, error) {
		run.fail(stage, err.Error())
		return finish(), apperr.Classify(err)
	}

	run.emit()

	// 1. 生打刻
	run.start(0)
	raw, err := s.raw.ListRawIdentities(ctx)
	if err != nil {
		return stageErr(0, err)
	}
	reachable := map[string]struct{}{}
	rawUsers := map[string]struct{}{}
	for _, r := range raw {
		if e := identity.NormalizeID(r.EmployeeID); e != "" {
			reachable[e] = struct{}{}
		}
		if u := identity.NormalizeID(r.UserID); u != "" {
			rawUsers[u] = struct{}{}
		}
	}
	run.done(0, len(raw), fmt.Sprintf("Found %d raw attendance records", len(raw)))

	// 2. マッピング
	run.start(1)
	mappings, err := s.raw.ListMappingPairs(ctx)
	if err != nil {
		return stageErr(1, err)
	}
	userToEmp := map[string]string{}
	for _, m := range mappings {
		u, e := identity.NormalizeID(m.UserID), identity.NormalizeID(m.EmployeeID)
		if u == "" || e == "" {
			continue
		}
		if _, ok := userToEmp[u]; !ok {
			userToEmp[u] = e
		}
	}
	for u := range rawUsers {
		if e, ok := userToEmp[u]; ok {
			reachable[e] = struct{}{}
		}
	}
	run.done(1, len(mappings), fmt.Sprintf("Processed %d user ID mappings", len(mappings)))
	if len(reachable) == 0 {
		return halt(1, HaltNoReachableIDs)
	}

	// 3. staging
	run.start(2)
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return stageErr(2, err)
	}
	run.done(2, len(all), fmt.Sprintf("Loaded %d staging employees", len(all)))

	// 4. 照合
	run.start(3)
	var matches []Record
	for _, st := range all {
		if _, ok := reachable[identity.NormalizeID(st.EmployeeID)]; ok {
			matches = append(matches, st)
		}
	}
	res.Matched = len(matches)
	if len(matches) == 0 {
		return halt(3, HaltNoStagingMatch)
	}
	run.done(3, len(matches), fmt.Sprintf("Found %d matching records", len(matches)))

	// 5. 昇格
	run.start(4)
	seen := map[string]struct{}{}
	var toDelete []string
	var promotedIDs []string
	for _, st := range matches {
		if err := ctx.Err(); err != nil {
			return stageErr(4, err)
		}
		key := strings.ToLower(strings.TrimSpace(st.EmployeeID))
		if _, dup := seen[key]; dup {
			res.Failures = append(res.Failures, RowFailure{StagingID: st.ID, EmployeeID: st.EmployeeID, Reason: "duplicate employee_id in staging"})
			continue
		}
		seen[key] = struct{}{}

		reason, rowID := s.promoteOne(ctx, st)
		if reason != "" {
			res.Failures = append(res.Failures, RowFailure{StagingID: st.ID, EmployeeID: st.EmployeeID, Reason: reason})
			continue
		}
		res.Promoted++
		toDelete = append(toDelete, st.ID)
		promotedIDs = append(promotedIDs, rowID)
		run.stages[4].Details = fmt.Sprintf("Promoted %d/%d employees", res.Promoted, len(matches))
		run.emit()
	}
	run.done(4, res.Promoted, fmt.Sprintf("Promoted %d employees to production", res.Promoted))

	// 6. 後片付け
	run.start(5)
	for _, id := range toDelete {
		if err := s.repo.Delete(ctx, id); err != nil {
			log.Printf("[WARN] staging cleanup failed id=%s: %v", id, err)
			continue
		}
		res.Removed++
		run.stages[5].Details = fmt.Sprintf("Removed %d/%d staging records", res.Removed, len(toDelete))
		run.emit()
	}
	run.done(5, res.Removed, fmt.Sprintf("Removed %d staging records", res.Removed))

	res.Retained = len(matches) - res.Removed
	now := s.clock.Now()
	s.audit.Record(ctx, actor, "PROMOTE_BATCH", table, "", nil, map[string]any{
		"matched": res.Matched, "promoted": res.Promoted, "removed": res.Removed, "employee_row_ids": promotedIDs,
	})
	if res.Promoted > 0 {
		s.pub.Publish(realtime.Event{Table: "employees", Op: realtime.OpInsert, UpdatedAt: now})
		s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpDelete, UpdatedAt: now})
	}
	log.Printf("[INFO] staging batch by=%s matched=%d promoted=%d removed=%d retained=%d",
		actor, res.Matched, res.Promoted, res.Removed, res.Retained)
	return finish(), nil
}

// promoteOne は失敗理由（成功時は空）と作成した社員の行 ID を返す
func (s *Service) promoteOne(ctx context.Context, st Record) (string, string) {
	existing, err := s.emps.GetByEmployeeID(ctx, st.EmployeeID)
	if err != nil {
		return messageOf(err), ""
	}
	if existing != nil {
		return "already exists in production", ""
	}
	plan := Reconcile(st, nil)
	if plan.Blocked {
		msgs := make([]string, 0, len(plan.Warnings))
		for _, w := range plan.Warnings {
			if w.Blocking {
				msgs = append(msgs, w.Field+": "+w.Message)
			}
		}
		return strings.Join(msgs, "; "), ""
	}
	e, err := s.build(plan)
	if err != nil {
		return err.Error(), ""
	}
	if err := s.emps.Insert(ctx, &e); err != nil {
		return messageOf(err), ""
	}
	return "", e.ID
}

func messageOf(err error) string {
	if api, ok := apperr.Classify(err).(*apperr.APIError); ok {
		return api.Message
	}
	return err.Error()
}
