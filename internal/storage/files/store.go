package files

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store writes one pretty-printed JSON document per (hotel, check-in date)
// under {root}/{hotelID}/{date}.json. The tree doubles as a local audit
// trail and as input to the SQL generation tool.
type Store struct{ root string }

func New(root string) *Store { return &Store{root: root} }

func (s *Store) path(hotelID, checkInDate string) string {
	return filepath.Join(s.root, hotelID, checkInDate+".json")
}

func (s *Store) Write(hotelID, checkInDate string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	p := s.path(hotelID, checkInDate)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o644)
}

func (s *Store) Read(hotelID, checkInDate string) ([]byte, error) {
	return os.ReadFile(s.path(hotelID, checkInDate))
}

// ListHotels returns hotel ids that have at least one artifact.
func (s *Store) ListHotels() ([]string, error) {
	ents, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListDates returns the check-in dates stored for one hotel, sorted.
func (s *Store) ListDates(hotelID string) ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(s.root, hotelID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(out)
	return out, nil
}
