package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"paperdesk/internal/logger"
)

// LoadStatus distinguishes how the last Load resolved; the caller always
// receives a usable portfolio either way.
type LoadStatus int

const (
	// LoadedFresh means no snapshot existed and the initial state was used.
	LoadedFresh LoadStatus = iota
	// LoadedSnapshot means the persisted snapshot was restored.
	LoadedSnapshot
	// LoadedCorruptReset means a snapshot existed but failed to parse and
	// the state was reset to the initial balance.
	LoadedCorruptReset
)

// Store persists the portfolio as a single JSON snapshot file.
type Store struct {
	path        string
	initialCash float64
}

func NewStore(path string, initialCash float64) *Store {
	return &Store{path: path, initialCash: initialCash}
}

// Load reads the last snapshot, collapsing every failure to the initial
// state. It never returns an error: the desk must come up regardless.
func (s *Store) Load() (*Portfolio, LoadStatus) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("portfolio snapshot unreadable (%s), starting fresh: %v", s.path, err)
		}
		return New(s.initialCash), LoadedFresh
	}
	var p Portfolio
	if err := json.Unmarshal(raw, &p); err != nil || p.Cash < 0 {
		logger.Warnf("portfolio snapshot corrupt (%s), resetting: %v", s.path, err)
		return New(s.initialCash), LoadedCorruptReset
	}
	if p.Positions == nil {
		p.Positions = make(map[string]*Position)
	}
	return &p, LoadedSnapshot
}

// Save writes the full snapshot atomically: temp file in the same directory,
// then rename, so a crash mid-write never clobbers the previous snapshot.
func (s *Store) Save(p *Portfolio) error {
	if p == nil {
		return fmt.Errorf("nil portfolio")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".portfolio-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
