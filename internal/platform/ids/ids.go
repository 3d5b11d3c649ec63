// Package ids は ID 発番と時刻取得を差し替え可能にするための小さな抽象
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock はテスト用
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

type IDGen interface {
	New() (string, error)
}

// ULIDGen: 同一ミリ秒内でも単調増加する ULID を返す
type ULIDGen struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGen() *ULIDGen {
	return &ULIDGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGen) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Must は失敗しない前提の呼び出し箇所向け
func Must(g IDGen) string {
	id, err := g.New()
	if err != nil {
		panic(err)
	}
	return id
}
