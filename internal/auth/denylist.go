package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// KV is the subset of fiber.Storage used for revocation (Redis in production).
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// StorageDenylist keeps revoked ids in a key-value storage with expiry.
type StorageDenylist struct {
	kv  KV
	now func() time.Time
}

// NewStorageDenylist creates a denylist on top of kv.
func NewStorageDenylist(kv KV) *StorageDenylist {
	return &StorageDenylist{kv: kv, now: time.Now}
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}

// Revoke stores the token id until it expires.
func (d *StorageDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.kv.Set(revokedKey(tokenID), []byte{1}, ttl)
}

// IsRevoked reports whether the token id was revoked.
func (d *StorageDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	val, err := d.kv.Get(revokedKey(tokenID))
	if err != nil {
		return false, err
	}
	return len(val) > 0, nil
}

// MemoryDenylist is a process-local denylist for single-instance deployments.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty in-memory denylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke stores the token id until it expires, pruning expired entries.
func (d *MemoryDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, exp := range d.revoked {
		if !exp.After(now) {
			delete(d.revoked, id)
		}
	}
	if until.After(now) {
		d.revoked[tokenID] = until
	}
	return nil
}

// IsRevoked reports whether the token id was revoked and has not expired.
func (d *MemoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[tokenID]
	return ok && exp.After(d.now()), nil
}
