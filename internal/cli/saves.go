package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"openarbitrage/internal/game"
)

var (
	ErrNoSave          = errors.New("save game not found")
	ErrInvalidSaveName = errors.New("save names may only contain letters, digits, '-' and '_'")
)

var saveNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Saves keeps named game snapshots under dir.
type Saves struct {
	dir string
}

func NewSaves(home string) *Saves {
	return &Saves{dir: filepath.Join(home, "saves")}
}

func (s *Saves) path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !saveNameRE.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSaveName, name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *Saves) Save(name string, state *game.State) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	body, err := game.MarshalState(state)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Saves) Load(name string) (*game.State, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSave, name)
		}
		return nil, err
	}
	return game.UnmarshalState(body)
}

func (s *Saves) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Saves) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNoSave, name)
		}
		return fmt.Errorf("delete save %s: %w", name, err)
	}
	return nil
}
