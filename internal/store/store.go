package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/metrics"
)

// Collection file names under the data directory.
const (
	plantationsFile = "plantaciones.json"
	tasksFile       = "cooldowns.json"
	eventsFile      = "registro.json"
)

// Collection labels for metrics.
const (
	collectionPlantations = "plantations"
	collectionTasks       = "tasks"
	collectionEvents      = "events"
)

// Store is the durable entity store. Every mutating call synchronously
// rewrites the affected collection file before returning, so a crash
// after any handler completes loses at most the in-flight interaction.
//
// All methods are safe for concurrent use; Discord interaction handlers
// and the reconciliation worker share one instance.
type Store struct {
	mu      sync.Mutex
	dataDir string

	plantations []domain.Plantation
	tasks       []domain.CooldownTask
	events      []domain.EventEntry

	lockMu     sync.Mutex
	plantLocks map[int]*sync.Mutex
}

// New opens (or creates) the data directory and loads all collections.
// Missing files start the collection empty; unknown fields are ignored and
// missing fields default to zero values, so schema changes stay additive.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dataDir: dataDir, plantLocks: make(map[int]*sync.Mutex)}

	if err := loadCollection(filepath.Join(dataDir, plantationsFile), &s.plantations); err != nil {
		return nil, fmt.Errorf("failed to load plantations: %w", err)
	}
	if err := loadCollection(filepath.Join(dataDir, tasksFile), &s.tasks); err != nil {
		return nil, fmt.Errorf("failed to load cooldown tasks: %w", err)
	}
	if err := loadCollection(filepath.Join(dataDir, eventsFile), &s.events); err != nil {
		return nil, fmt.Errorf("failed to load event log: %w", err)
	}

	return s, nil
}

// LockPlantation acquires the per-plantation span lock and returns its
// release function. The reconciliation worker and interaction handlers
// both hold it across their full read-decide-write span, network sends
// included, so neither side can overwrite state the other decided on
// while suspended in a round trip. It is separate from the collection
// mutex, which only guards individual store calls.
func (s *Store) LockPlantation(id int) func() {
	s.lockMu.Lock()
	l, ok := s.plantLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.plantLocks[id] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	return l.Unlock
}

func loadCollection(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// writeCollection persists v to path via a temp file and rename, so the
// previous durable snapshot survives a crash mid-write.
func (s *Store) writeCollection(name, collection string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		metrics.StoreWriteErrors.WithLabelValues(collection).Inc()
		return fmt.Errorf("failed to marshal %s: %w", collection, err)
	}

	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		metrics.StoreWriteErrors.WithLabelValues(collection).Inc()
		return fmt.Errorf("failed to write %s: %w", collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		metrics.StoreWriteErrors.WithLabelValues(collection).Inc()
		return fmt.Errorf("failed to replace %s: %w", collection, err)
	}

	metrics.StoreWrites.WithLabelValues(collection).Inc()
	return nil
}

// persistPlantations writes list durably, then adopts it in memory.
// On failure the in-memory state keeps matching the durable snapshot.
func (s *Store) persistPlantations(list []domain.Plantation) error {
	if err := s.writeCollection(plantationsFile, collectionPlantations, list); err != nil {
		return err
	}
	s.plantations = list
	return nil
}

func (s *Store) persistTasks(list []domain.CooldownTask) error {
	if err := s.writeCollection(tasksFile, collectionTasks, list); err != nil {
		return err
	}
	s.tasks = list
	return nil
}

func (s *Store) persistEvents(list []domain.EventEntry) error {
	if err := s.writeCollection(eventsFile, collectionEvents, list); err != nil {
		return err
	}
	s.events = list
	return nil
}
