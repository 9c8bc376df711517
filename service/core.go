package service

import (
	"context"
	"encoding/json"

	"github.com/pasarfleet/p-ui/core"
	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/logger"
	"github.com/pasarfleet/p-ui/util/common"
)

// CoreService manages core-config records and keeps the registry in
// step with them. Documents are validated eagerly: an invalid config
// never reaches the database or the registry.
type CoreService struct {
	cores *core.Manager
	nodes *NodeService
}

func NewCoreService(cores *core.Manager, nodes *NodeService) *CoreService {
	return &CoreService{
		cores: cores,
		nodes: nodes,
	}
}

// LoadCores populates the registry from the database. Dialect objects
// are built lazily on first use.
func (s *CoreService) LoadCores() error {
	db := database.GetDB()
	var records []model.CoreConfig
	if err := db.Find(&records).Error; err != nil {
		return err
	}
	s.cores.Load(records)
	return nil
}

func (s *CoreService) GetAllConfigs() ([]model.CoreConfig, error) {
	db := database.GetDB()
	var records []model.CoreConfig
	err := db.Find(&records).Error
	return records, err
}

func (s *CoreService) GetConfig(id uint) (*model.CoreConfig, error) {
	db := database.GetDB()
	var record model.CoreConfig
	err := db.First(&record, id).Error
	if database.IsNotFound(err) {
		return nil, common.NewErrorf("core config %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *CoreService) CreateConfig(record *model.CoreConfig) error {
	if err := s.validate(record); err != nil {
		return err
	}

	db := database.GetDB()
	if err := db.Create(record).Error; err != nil {
		return err
	}

	return s.cores.Put(record)
}

// UpdateConfig replaces the record and its registry entry wholesale,
// then reconnects every node running this config in the background.
func (s *CoreService) UpdateConfig(record *model.CoreConfig) error {
	if err := s.validate(record); err != nil {
		return err
	}

	orig, err := s.GetConfig(record.Id)
	if err != nil {
		return err
	}
	record.CreatedAt = orig.CreatedAt

	db := database.GetDB()
	if err := db.Save(record).Error; err != nil {
		return err
	}

	if err := s.cores.Put(record); err != nil {
		return err
	}

	go func() {
		if err := s.nodes.RestartAllNodes(context.Background(), record.Id, "config-update"); err != nil {
			logger.Error("restart nodes after config update failed: ", err)
		}
	}()

	return nil
}

func (s *CoreService) DeleteConfig(id uint) error {
	if id == core.DefaultConfigId {
		return common.NewError("default core config cannot be deleted")
	}

	db := database.GetDB()
	var count int64
	if err := db.Model(&model.Node{}).Where("core_config_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return common.NewErrorf("core config %d is used by %d node(s)", id, count)
	}

	if err := db.Delete(&model.CoreConfig{}, id).Error; err != nil {
		return err
	}

	s.cores.Remove(id)
	return nil
}

func (s *CoreService) Save(act string, data json.RawMessage) error {
	var err error
	switch act {
	case "new", "update":
		var record model.CoreConfig
		err = json.Unmarshal(data, &record)
		if err != nil {
			return err
		}
		if act == "new" {
			err = s.CreateConfig(&record)
		} else {
			err = s.UpdateConfig(&record)
		}
	case "del":
		var id uint
		err = json.Unmarshal(data, &id)
		if err != nil {
			return err
		}
		err = s.DeleteConfig(id)
	}
	return err
}

// validate builds the dialect object once, up front. The result is
// thrown away; Put rebuilds it when the record is stored.
func (s *CoreService) validate(record *model.CoreConfig) error {
	if !core.CoreType(record.CoreType).Valid() {
		return common.NewErrorf("unknown core type: %s", record.CoreType)
	}
	_, err := core.NewCore(core.CoreType(record.CoreType), record.Config, record.ExcludeTags(), record.FallbacksTags())
	return err
}
