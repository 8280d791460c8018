// README: Redis-backed mirror of the unallocated booking pool, read by
// company dashboards without hitting the primary store.
package dispatch

import (
	"context"

	"github.com/redis/go-redis/v9"

	"taxihub/internal/types"
)

const pendingKey = "dispatch:pending"

type Board struct {
	rdb *redis.Client
}

func NewBoard(rdb *redis.Client) *Board {
	return &Board{rdb: rdb}
}

func (b *Board) Add(ctx context.Context, id types.ID) error {
	return b.rdb.SAdd(ctx, pendingKey, string(id)).Err()
}

func (b *Board) Remove(ctx context.Context, id types.ID) error {
	return b.rdb.SRem(ctx, pendingKey, string(id)).Err()
}

// PendingIDs returns the mirrored pool in no particular order. The primary
// store remains the source of truth; the mirror is advisory.
func (b *Board) PendingIDs(ctx context.Context) ([]types.ID, error) {
	members, err := b.rdb.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]types.ID, 0, len(members))
	for _, m := range members {
		out = append(out, types.ID(m))
	}
	return out, nil
}
