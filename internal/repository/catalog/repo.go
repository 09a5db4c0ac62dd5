// Package catalog loads the static assessment catalog and serves it
// read-only for the lifetime of the process.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/assessdex/assessdex/internal/domain"
)

// defaultType is assigned when a record carries no type tag, matching the
// scraper's fallback vocabulary.
const defaultType = "General"

// Store is the in-memory catalog. Items keep their file order; the slice is
// never mutated after Load returns.
type Store struct {
	items []domain.Item
	byURL map[string]int
}

// Load reads and validates the catalog file. All-or-nothing: any invalid
// record fails the whole load, so startup aborts instead of serving a
// degraded catalog.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var dtos []itemDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(dtos) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	s := &Store{
		items: make([]domain.Item, 0, len(dtos)),
		byURL: make(map[string]int, len(dtos)),
	}

	for i, dto := range dtos {
		item, err := itemFromDTO(dto, i)
		if err != nil {
			return nil, fmt.Errorf("catalog record %d: %w", i, err)
		}
		if _, dup := s.byURL[item.URL]; dup {
			return nil, fmt.Errorf("catalog record %d: duplicate url %q", i, item.URL)
		}
		s.byURL[item.URL] = len(s.items)
		s.items = append(s.items, item)
	}

	return s, nil
}

// Items returns the catalog in file order. Callers must not mutate it.
func (s *Store) Items() []domain.Item {
	return s.items
}

// Len returns the number of catalog items.
func (s *Store) Len() int {
	return len(s.items)
}

// Get looks up an item by URL.
func (s *Store) Get(url string) (domain.Item, bool) {
	idx, ok := s.byURL[url]
	if !ok {
		return domain.Item{}, false
	}
	return s.items[idx], true
}

func itemFromDTO(dto itemDTO, ordinal int) (domain.Item, error) {
	if strings.TrimSpace(dto.URL) == "" {
		return domain.Item{}, fmt.Errorf("missing url")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return domain.Item{}, fmt.Errorf("missing name")
	}

	types := []string(dto.TestType)
	if len(types) == 0 && strings.TrimSpace(dto.Type) != "" {
		types = []string{dto.Type}
	}
	if len(types) == 0 {
		types = []string{defaultType}
	}

	return domain.Item{
		URL:             dto.URL,
		Name:            dto.Name,
		Description:     dto.Description,
		DurationMinutes: dto.Duration.Minutes,
		TestTypes:       types,
		Remote:          domain.ParseTriState(dto.RemoteSupport),
		Adaptive:        domain.ParseTriState(dto.AdaptiveSupport),
		Ordinal:         ordinal,
	}, nil
}
