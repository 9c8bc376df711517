package model

type NodeStatus string

const (
	NodeConnected NodeStatus = "connected"
	NodeError     NodeStatus = "error"
	NodeDisabled  NodeStatus = "disabled"
	NodeLimited   NodeStatus = "limited"
)

// Excluded reports whether the node must never hold a live session.
func (s NodeStatus) Excluded() bool {
	return s == NodeDisabled || s == NodeLimited
}

type Node struct {
	Id      uint       `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Name    string     `json:"name" form:"name" gorm:"unique;not null"`
	Address string     `json:"address" form:"address"`
	Port    int        `json:"port" form:"port" gorm:"default:62050"`
	ApiKey  string     `json:"apiKey" form:"apiKey"`
	Status  NodeStatus `json:"status" form:"status" gorm:"default:'error'"`
	Message string     `json:"message"`
	// CoreConfigId zero means the fleet's default core config.
	CoreConfigId uint   `json:"coreConfigId" form:"coreConfigId" gorm:"default:0"`
	KeepAlive    bool   `json:"keepAlive" form:"keepAlive" gorm:"default:false"`
	CoreVersion  string `json:"coreVersion"`
	NodeVersion  string `json:"nodeVersion"`
	Uplink       uint64 `json:"uplink" gorm:"default:0"`
	Downlink     uint64 `json:"downlink" gorm:"default:0"`
	CreatedAt    int64  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    int64  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// NodeStat is one realtime-stats snapshot of a node, collected
// periodically while the node is connected.
type NodeStat struct {
	Id                     uint64  `json:"id" gorm:"primaryKey;autoIncrement"`
	NodeId                 uint    `json:"nodeId" gorm:"index;not null"`
	DateTime               int64   `json:"dateTime" gorm:"index;autoCreateTime"`
	MemTotal               uint64  `json:"memTotal"`
	MemUsed                uint64  `json:"memUsed"`
	CpuCores               int     `json:"cpuCores"`
	CpuUsage               float64 `json:"cpuUsage"`
	IncomingBandwidthSpeed uint64  `json:"incomingBandwidthSpeed"`
	OutgoingBandwidthSpeed uint64  `json:"outgoingBandwidthSpeed"`
}

// NodeUsageLog is an append-only record written when a node's usage
// counters are reset.
type NodeUsageLog struct {
	Id       uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	NodeId   uint   `json:"nodeId" gorm:"index;not null"`
	Uplink   uint64 `json:"uplink"`
	Downlink uint64 `json:"downlink"`
	ResetAt  int64  `json:"resetAt" gorm:"autoCreateTime"`
}
