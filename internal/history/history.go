package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

// DefaultCapacity is how many records the log keeps.
const DefaultCapacity = 100

// PostHistory is an append-only, bounded record of published posts stored as
// one JSON document. Every append rewrites the whole document. Appends within a
// process are serialized; two processes sharing a file will lose updates.
type PostHistory struct {
	path     string
	capacity int
	mu       sync.Mutex
}

func NewPostHistory(path string) *PostHistory {
	return NewPostHistoryWithCapacity(path, DefaultCapacity)
}

func NewPostHistoryWithCapacity(path string, capacity int) *PostHistory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &PostHistory{path: path, capacity: capacity}
}

func (h *PostHistory) Path() string {
	return h.path
}

// Append adds record and drops the oldest entries beyond capacity.
func (h *PostHistory) Append(record *models.PostRecord) error {
	if record == nil {
		return apperr.Newf(apperr.KindPersistence, "append history", "record is nil")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.load()
	if err != nil {
		return apperr.New(apperr.KindPersistence, "append history", err)
	}

	records = append(records, *record)
	if len(records) > h.capacity {
		records = records[len(records)-h.capacity:]
	}

	if err := h.save(records); err != nil {
		return apperr.New(apperr.KindPersistence, "append history", err)
	}
	return nil
}

// Recent returns up to limit of the newest records, oldest first.
// A limit of zero or less returns everything. A missing file is an empty history.
func (h *PostHistory) Recent(limit int) ([]models.PostRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.load()
	if err != nil {
		return []models.PostRecord{}, apperr.New(apperr.KindPersistence, "read history", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (h *PostHistory) load() ([]models.PostRecord, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.PostRecord{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", h.path, err)
	}

	var records []models.PostRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", h.path, err)
	}
	if records == nil {
		records = []models.PostRecord{}
	}
	return records, nil
}

func (h *PostHistory) save(records []models.PostRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(h.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, h.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", h.path, err)
	}
	return nil
}
