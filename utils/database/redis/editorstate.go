package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistante-suite/utils/jsonform"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	stateEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	stateDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// EncodeState packs an editor session as zstd-compressed msgpack. History
// snapshots are whole documents, so they compress well.
func EncodeState(state jsonform.State) ([]byte, error) {
	raw, err := msgpack.Marshal(&state)
	if err != nil {
		return nil, fmt.Errorf("encode editor state: %w", err)
	}
	return stateEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func DecodeState(data []byte) (*jsonform.State, error) {
	raw, err := stateDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress editor state: %w", err)
	}
	var state jsonform.State
	if err := msgpack.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode editor state: %w", err)
	}
	return &state, nil
}

// EditorStateRepository keeps editor sessions in Redis.
type EditorStateRepository struct {
	redis *RedisManager
}

func NewEditorStateRepository(redis *RedisManager) *EditorStateRepository {
	return &EditorStateRepository{redis: redis}
}

func (r *EditorStateRepository) LoadState(ctx context.Context, key string) (*jsonform.State, error) {
	data, err := r.redis.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeState(data)
}

func (r *EditorStateRepository) SaveState(ctx context.Context, key string, state jsonform.State, ttl time.Duration) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}
	return r.redis.Redis.Set(ctx, key, data, ttl).Err()
}

func (r *EditorStateRepository) DeleteState(ctx context.Context, key string) error {
	return r.redis.Redis.Del(ctx, key).Err()
}
