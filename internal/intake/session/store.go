// Package session keeps in-progress intake drafts in redis. A draft lives
// under the conversation id and expires after the configured TTL; every
// patch refreshes the clock.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadrouter_backend/platform/apperr"
	"leadrouter_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "intake:draft:"

const draftNotFoundMsg = "intake session not found"

// Draft is a partially filled lead form.
type Draft struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Services     string    `json:"services"`
	Regions      string    `json:"regions"`
	AnnualIncome string    `json:"annualIncome"`
	Notes        string    `json:"notes"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Patch carries the fields of a draft update. Nil fields keep the stored value.
type Patch struct {
	Name         *string
	Email        *string
	Phone        *string
	Services     *string
	Regions      *string
	AnnualIncome *string
	Notes        *string
}

// Store is the redis-backed draft store.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a draft store with the configured TTL.
func New(rdb *redis.Client, cfg config.SessionConfig) *Store {
	return &Store{rdb: rdb, ttl: cfg.GetSessionTTL()}
}

// Get returns the draft for a conversation id.
func (s *Store) Get(ctx context.Context, id string) (Draft, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Draft{}, apperr.NotFound(draftNotFoundMsg)
		}
		return Draft{}, fmt.Errorf("get intake draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return Draft{}, fmt.Errorf("decode intake draft: %w", err)
	}
	return draft, nil
}

// Apply merges a patch into the draft, creating it if absent, and refreshes
// the TTL.
func (s *Store) Apply(ctx context.Context, id string, patch Patch) (Draft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return Draft{}, err
	}

	merge(&draft, patch)
	draft.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(draft)
	if err != nil {
		return Draft{}, fmt.Errorf("encode intake draft: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return Draft{}, fmt.Errorf("store intake draft: %w", err)
	}
	return draft, nil
}

// Delete discards a draft.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete intake draft: %w", err)
	}
	return nil
}

// Take returns the draft and removes it in one step, used on submit.
func (s *Store) Take(ctx context.Context, id string) (Draft, error) {
	data, err := s.rdb.GetDel(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Draft{}, apperr.NotFound(draftNotFoundMsg)
		}
		return Draft{}, fmt.Errorf("take intake draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return Draft{}, fmt.Errorf("decode intake draft: %w", err)
	}
	return draft, nil
}

func merge(draft *Draft, patch Patch) {
	if patch.Name != nil {
		draft.Name = *patch.Name
	}
	if patch.Email != nil {
		draft.Email = *patch.Email
	}
	if patch.Phone != nil {
		draft.Phone = *patch.Phone
	}
	if patch.Services != nil {
		draft.Services = *patch.Services
	}
	if patch.Regions != nil {
		draft.Regions = *patch.Regions
	}
	if patch.AnnualIncome != nil {
		draft.AnnualIncome = *patch.AnnualIncome
	}
	if patch.Notes != nil {
		draft.Notes = *patch.Notes
	}
}
