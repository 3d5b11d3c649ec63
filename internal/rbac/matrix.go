// Package rbac はロールと権限の組を保持し、判定と切り替えを行う。
package rbac

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"hrms-backend/internal/platform/apperr"
)

type Matrix struct {
	repo     Repository
	mu       sync.RWMutex
	grants   map[Grant]struct{}
	updating atomic.Bool
}

func NewMatrix(repo Repository) *Matrix {
	return &Matrix{repo: repo, grants: make(map[Grant]struct{})}
}

// Load はストアから全件を読み直す（起動時に一度）
func (m *Matrix) Load(ctx context.Context) error {
	gs, err := m.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	next := make(map[Grant]struct{}, len(gs))
	for _, g := range gs {
		next[g] = struct{}{}
	}
	m.mu.Lock()
	m.grants = next
	m.mu.Unlock()
	log.Printf("[INFO] rbac: loaded %d grants", len(gs))
	return nil
}

func (m *Matrix) HasPermission(role, permission string) bool {
	if role == SuperAdmin {
		return true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.grants[Grant{Role: role, Permission: permission}]
	return ok
}

func (m *Matrix) Permissions(role string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	for g := range m.grants {
		if g.Role == role {
			out = append(out, g.Permission)
		}
	}
	sort.Strings(out)
	return out
}

// Updating: 切り替え処理中なら true（UI の操作抑止用）
func (m *Matrix) Updating() bool { return m.updating.Load() }

// toggleIntent は適用前の状態を持ち、失敗時に元へ戻す
type toggleIntent struct {
	grant      Grant
	hadBefore  bool
	grantAfter bool
}

func (m *Matrix) begin(g Grant) toggleIntent {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, had := m.grants[g]
	it := toggleIntent{grant: g, hadBefore: had, grantAfter: !had}
	m.set(g, it.grantAfter)
	return it
}

func (m *Matrix) revert(it toggleIntent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(it.grant, it.hadBefore)
}

// set は m.mu を保持した状態で呼ぶ
func (m *Matrix) set(g Grant, on bool) {
	if on {
		m.grants[g] = struct{}{}
	} else {
		delete(m.grants, g)
	}
}

// Toggle は権限の付与/剥奪を反転させ、反転後の状態を返す。
// 先にメモリへ反映し、ストア更新が失敗したら元に戻す。同時に一件しか受け付けない。
func (m *Matrix) Toggle(ctx context.Context, role, permission string) (bool, error) {
	if !IsKnownRole(role) {
		return false, apperr.Invalid("unknown role: " + role)
	}
	if !IsKnownPermission(permission) {
		return false, apperr.Invalid("unknown permission: " + permission)
	}
	if role == SuperAdmin {
		return true, apperr.Invalid("super_admin permissions cannot be changed")
	}
	if !m.updating.CompareAndSwap(false, true) {
		return false, apperr.Busy("another permission update is in progress")
	}
	defer m.updating.Store(false)

	it := m.begin(Grant{Role: role, Permission: permission})

	var err error
	if it.grantAfter {
		err = m.repo.Add(ctx, it.grant)
	} else {
		err = m.repo.Remove(ctx, it.grant)
	}
	if err != nil {
		m.revert(it)
		log.Printf("[WARN] rbac: toggle %s/%s reverted: %v", role, permission, err)
		return it.hadBefore, err
	}
	return it.grantAfter, nil
}

// Snapshot: ロールごとの権限一覧
func (m *Matrix) Snapshot() map[string][]string {
	out := make(map[string][]string, len(Roles))
	for _, r := range Roles {
		out[r] = m.Permissions(r)
	}
	return out
}
