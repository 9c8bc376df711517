package model

import "encoding/json"

type CoreConfig struct {
	Id       uint   `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Name     string `json:"name" form:"name" gorm:"unique;not null"`
	CoreType string `json:"coreType" form:"coreType" gorm:"default:'xray'"`
	// Config is the backend's native document, stored verbatim.
	Config               json.RawMessage `json:"config" gorm:"type:text"`
	ExcludeInboundTags   json.RawMessage `json:"excludeInboundTags" gorm:"type:text"`
	FallbacksInboundTags json.RawMessage `json:"fallbacksInboundTags" gorm:"type:text"`
	CreatedAt            int64           `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt            int64           `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (c *CoreConfig) ExcludeTags() []string {
	return decodeTags(c.ExcludeInboundTags)
}

func (c *CoreConfig) FallbacksTags() []string {
	return decodeTags(c.FallbacksInboundTags)
}

func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}
