// Package journal records the accepted commands of a local session next to its
// seed, so the session can be rebuilt by replaying them.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"openarbitrage/internal/game"
)

var ErrNoJournal = errors.New("no journal recorded")

type Entry struct {
	game.CommandRequest
	At time.Time `json:"at"`
}

type Journal struct {
	Seed     int64      `json:"seed"`
	Rules    game.Rules `json:"rules"`
	Commands []Entry    `json:"commands"`
}

// Store keeps one journal file under dir.
type Store struct {
	path string
	now  func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "journal.json"), now: time.Now}
}

func (s *Store) Path() string {
	return s.path
}

// Start replaces any previous journal with an empty one for a new session.
func (s *Store) Start(seed int64, rules game.Rules) error {
	return s.Save(Journal{Seed: seed, Rules: rules, Commands: []Entry{}})
}

func (s *Store) Load() (Journal, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Journal{}, ErrNoJournal
		}
		return Journal{}, err
	}
	if len(raw) == 0 {
		return Journal{}, ErrNoJournal
	}
	var out Journal
	if err := json.Unmarshal(raw, &out); err != nil {
		return Journal{}, fmt.Errorf("decode journal: %w", err)
	}
	return out, nil
}

func (s *Store) Save(j Journal) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *Store) Push(cmd game.Command) error {
	req, err := game.Request(cmd)
	if err != nil {
		return err
	}
	j, err := s.Load()
	if err != nil {
		return err
	}
	j.Commands = append(j.Commands, Entry{CommandRequest: req, At: s.now().UTC()})
	return s.Save(j)
}

// Replay rebuilds the session from its seed. Every journaled command was
// accepted once, so any rejection means the journal does not match the engine.
func Replay(j Journal) (*game.State, error) {
	state := game.NewState(j.Seed, j.Rules)
	for i, entry := range j.Commands {
		cmd, err := entry.Command()
		if err != nil {
			return state, fmt.Errorf("journal entry %d: %w", i, err)
		}
		if err := state.Apply(cmd); err != nil {
			return state, fmt.Errorf("journal entry %d (%s): %w", i, entry.Type, err)
		}
	}
	return state, nil
}
