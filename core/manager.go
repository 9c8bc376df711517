package core

import (
	"sync"

	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/util/common"
)

// DefaultConfigId identifies the fleet's primary core config, used
// when a node does not name one.
const DefaultConfigId uint = 1

// Manager is the registry of core configs, keyed by record id.
// Records are loaded up front; dialect objects are constructed on
// first lookup and cached until the record is replaced.
type Manager struct {
	mu      sync.Mutex
	records map[uint]*model.CoreConfig
	cores   map[uint]Core
}

func NewManager() *Manager {
	return &Manager{
		records: make(map[uint]*model.CoreConfig),
		cores:   make(map[uint]Core),
	}
}

// Load replaces the whole registry with the given records. Cached
// dialect objects are dropped and rebuilt lazily.
func (m *Manager) Load(records []model.CoreConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[uint]*model.CoreConfig, len(records))
	m.cores = make(map[uint]Core, len(records))
	for i := range records {
		record := records[i]
		m.records[record.Id] = &record
	}
}

// Get returns the dialect object for a config id, constructing it on
// first use. Id zero resolves to the default config.
func (m *Manager) Get(id uint) (Core, error) {
	if id == 0 {
		id = DefaultConfigId
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.cores[id]; ok {
		return c, nil
	}

	record, ok := m.records[id]
	if !ok {
		return nil, common.NewErrorf("core config %d not found", id)
	}

	c, err := NewCore(CoreType(record.CoreType), record.Config, record.ExcludeTags(), record.FallbacksTags())
	if err != nil {
		return nil, err
	}

	m.cores[id] = c
	return c, nil
}

// Put validates the record eagerly and replaces any previous entry
// wholesale. The record is never stored when construction fails.
func (m *Manager) Put(record *model.CoreConfig) error {
	c, err := NewCore(CoreType(record.CoreType), record.Config, record.ExcludeTags(), record.FallbacksTags())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.Id] = record
	m.cores[record.Id] = c
	return nil
}

func (m *Manager) Remove(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	delete(m.cores, id)
}

func (m *Manager) Has(id uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[id]
	return ok
}
