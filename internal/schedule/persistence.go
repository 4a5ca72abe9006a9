package schedule

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshot is the on-disk representation of an Enumerator's counter vector,
// letting a long-running exhaustive fault-injection sweep resume across
// process restarts without losing its position in the enumeration.
type snapshot struct {
	Counter  []bool `msgpack:"counter"`
	Position int    `msgpack:"position"`
	Done     bool   `msgpack:"done"`
}

// SaveState serializes the enumerator's counter vector to path.
func (e *Enumerator) SaveState(path string) error {
	e.mu.Lock()
	snap := snapshot{
		Counter:  append([]bool(nil), e.counter...),
		Position: e.position,
		Done:     e.done,
	}
	e.mu.Unlock()

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("schedule: marshal enumerator state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("schedule: write enumerator state: %w", err)
	}
	return nil
}

// LoadState reconstructs an Enumerator previously saved with SaveState.
func LoadState(path string) (*Enumerator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: read enumerator state: %w", err)
	}
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("schedule: unmarshal enumerator state: %w", err)
	}
	return &Enumerator{
		counter:  snap.Counter,
		position: snap.Position,
		done:     snap.Done,
	}, nil
}
