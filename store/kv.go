// ABOUTME: Store implementation over any byte-oriented key-value driver
// ABOUTME: Each state key holds one JSON document so every save is a single write
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/models"
)

// KV is the minimal driver contract. Get returns ErrNotFound for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// KVStore implements Store on top of a KV driver.
type KVStore struct {
	kv     KV
	logger *log.Logger
}

// NewKVStore wraps kv. A nil logger uses the process default.
func NewKVStore(kv KV, logger *log.Logger) *KVStore {
	if logger == nil {
		logger = log.Default()
	}
	return &KVStore{kv: kv, logger: logger}
}

func (s *KVStore) Load(ctx context.Context) LoadResult {
	data, err := s.kv.Get(ctx, KeyCustomers)
	if errors.Is(err, ErrNotFound) {
		return LoadResult{}
	}
	if err != nil {
		return LoadResult{Err: fmt.Errorf("failed to read leads: %w", err)}
	}
	return decodeRecords(data, s.logger)
}

// decodeRecords parses a persisted collection, recovering to empty.
func decodeRecords(data []byte, logger *log.Logger) LoadResult {
	if len(data) == 0 {
		return LoadResult{}
	}
	var records []models.CustomerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("lead collection is corrupt, starting empty", "err", err)
		return LoadResult{Recovered: true, Reason: fmt.Sprintf("corrupt lead collection: %v", err)}
	}
	return LoadResult{Records: records}
}

func (s *KVStore) Save(ctx context.Context, records []models.CustomerRecord) error {
	if records == nil {
		records = []models.CustomerRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode leads: %w", err)
	}
	if err := s.kv.Set(ctx, KeyCustomers, data); err != nil {
		return fmt.Errorf("failed to save leads: %w", err)
	}
	return nil
}

func (s *KVStore) LoadPending(ctx context.Context) ([]models.Submission, error) {
	data, err := s.kv.Get(ctx, KeyPending)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending submissions: %w", err)
	}
	var subs []models.Submission
	if err := json.Unmarshal(data, &subs); err != nil {
		s.logger.Warn("pending submissions are corrupt, ignoring", "err", err)
		return nil, nil
	}
	return subs, nil
}

func (s *KVStore) AppendPending(ctx context.Context, sub models.Submission) error {
	subs, err := s.LoadPending(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(append(subs, sub))
	if err != nil {
		return fmt.Errorf("failed to encode pending submissions: %w", err)
	}
	if err := s.kv.Set(ctx, KeyPending, data); err != nil {
		return fmt.Errorf("failed to save pending submissions: %w", err)
	}
	return nil
}

func (s *KVStore) ClearPending(ctx context.Context) error {
	return s.delete(ctx, KeyPending)
}

func (s *KVStore) RemovePending(ctx context.Context, subs []models.Submission) error {
	if len(subs) == 0 {
		return nil
	}
	queue, err := s.LoadPending(ctx)
	if err != nil {
		return err
	}
	kept := WithoutPending(queue, subs)
	if len(kept) == 0 {
		return s.ClearPending(ctx)
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("failed to encode pending submissions: %w", err)
	}
	if err := s.kv.Set(ctx, KeyPending, data); err != nil {
		return fmt.Errorf("failed to save pending submissions: %w", err)
	}
	return nil
}

func (s *KVStore) LoadAutosave(ctx context.Context, form string) (map[string]string, bool, error) {
	data, err := s.kv.Get(ctx, AutosaveKey(form))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read autosave: %w", err)
	}
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		s.logger.Warn("autosave snapshot is corrupt, ignoring", "form", form, "err", err)
		return nil, false, nil
	}
	return fields, true, nil
}

func (s *KVStore) SaveAutosave(ctx context.Context, form string, fields map[string]string) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode autosave: %w", err)
	}
	if err := s.kv.Set(ctx, AutosaveKey(form), data); err != nil {
		return fmt.Errorf("failed to save autosave: %w", err)
	}
	return nil
}

func (s *KVStore) ClearAutosave(ctx context.Context, form string) error {
	return s.delete(ctx, AutosaveKey(form))
}

func (s *KVStore) Theme(ctx context.Context) (string, error) {
	data, err := s.kv.Get(ctx, KeyTheme)
	if errors.Is(err, ErrNotFound) || (err == nil && len(data) == 0) {
		return DefaultTheme, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	return string(data), nil
}

func (s *KVStore) SetTheme(ctx context.Context, theme string) error {
	if err := s.kv.Set(ctx, KeyTheme, []byte(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

func (s *KVStore) Close() error {
	return s.kv.Close()
}

func (s *KVStore) delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
