package model

import "encoding/json"

type Client struct {
	Id     uint   `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Enable bool   `json:"enable" form:"enable" gorm:"default:true"`
	Name   string `json:"name" form:"name" gorm:"unique;not null"`
	Uuid   string `json:"uuid" form:"uuid"`
	// Inbounds restricts the client to a set of inbound tags; empty
	// means all inbounds.
	Inbounds  json.RawMessage `json:"inbounds" form:"inbounds" gorm:"type:text"`
	Up        uint64          `json:"up" gorm:"default:0"`
	Down      uint64          `json:"down" gorm:"default:0"`
	CreatedAt int64           `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt int64           `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (c *Client) InboundTags() []string {
	return decodeTags(c.Inbounds)
}
