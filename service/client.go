package service

import (
	"encoding/json"

	"github.com/gofrs/uuid/v5"

	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/node"
)

type ClientService struct {
}

func (s *ClientService) GetAllClients() ([]model.Client, error) {
	db := database.GetDB()
	var clients []model.Client
	err := db.Find(&clients).Error
	return clients, err
}

func (s *ClientService) GetClientByName(name string) (*model.Client, error) {
	db := database.GetDB()
	var client model.Client
	err := db.Where("name = ?", name).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) CreateClient(client *model.Client) error {
	if client.Uuid == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		client.Uuid = id.String()
	}
	db := database.GetDB()
	return db.Create(client).Error
}

func (s *ClientService) UpdateClient(client *model.Client) error {
	db := database.GetDB()
	return db.Save(client).Error
}

func (s *ClientService) DeleteClient(id uint) error {
	db := database.GetDB()
	return db.Delete(&model.Client{}, id).Error
}

func (s *ClientService) Save(act string, data json.RawMessage) error {
	var err error
	switch act {
	case "new", "update":
		var client model.Client
		err = json.Unmarshal(data, &client)
		if err != nil {
			return err
		}
		if act == "new" {
			err = s.CreateClient(&client)
		} else {
			err = s.UpdateClient(&client)
		}
	case "del":
		var id uint
		err = json.Unmarshal(data, &id)
		if err != nil {
			return err
		}
		err = s.DeleteClient(id)
	}
	return err
}

// CoreUsers builds the active user set dispatched to nodes. Bulk
// operations fetch this once per batch.
func (s *ClientService) CoreUsers() ([]*node.User, error) {
	db := database.GetDB()
	var clients []model.Client
	err := db.Where("enable = ?", true).Find(&clients).Error
	if err != nil {
		return nil, err
	}

	users := make([]*node.User, 0, len(clients))
	for _, client := range clients {
		users = append(users, &node.User{
			Id:       client.Id,
			Name:     client.Name,
			Key:      client.Uuid,
			Inbounds: client.InboundTags(),
		})
	}
	return users, nil
}
