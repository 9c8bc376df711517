package api

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/service"
	"github.com/pasarfleet/p-ui/util/common"
)

type ApiService struct {
	service.UserService
	service.ServerService
	service.PanelService
	NodeService  *service.NodeService
	CoreService  *service.CoreService
	StatsService *service.StatsService
}

func (a *ApiService) Login(c *gin.Context) {
	username := c.Request.FormValue("user")
	password := c.Request.FormValue("pass")

	user, err := a.UserService.Login(username, password)
	if err != nil {
		jsonMsg(c, "login", err)
		return
	}

	tokenId, err := uuid.NewV4()
	if err != nil {
		jsonMsg(c, "login", err)
		return
	}

	token := model.Tokens{
		Token:  tokenId.String(),
		Desc:   "login session",
		Expiry: time.Now().Add(24 * time.Hour).Unix(),
		UserId: user.Id,
	}
	db := database.GetDB()
	if err := db.Create(&token).Error; err != nil {
		jsonMsg(c, "login", err)
		return
	}

	jsonObj(c, map[string]string{"token": token.Token}, nil)
}

func (a *ApiService) Logout(c *gin.Context) {
	token := c.GetHeader("Token")
	db := database.GetDB()
	db.Where("token = ?", token).Delete(&model.Tokens{})
	jsonMsg(c, "logout", nil)
}

func (a *ApiService) ChangePass(c *gin.Context) {
	id, err := strconv.ParseUint(c.Request.FormValue("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "changePass", err)
		return
	}
	oldPass := c.Request.FormValue("oldPass")
	newPass := c.Request.FormValue("newPass")

	err = a.UserService.ChangePass(uint(id), oldPass, newPass)
	jsonMsg(c, "changePass", err)
}

func (a *ApiService) GetStatus(c *gin.Context) {
	jsonObj(c, a.ServerService.GetStatus(), nil)
}

func (a *ApiService) GetPanelLogs(c *gin.Context) {
	logs := a.ServerService.GetLogs(c.Query("c"), c.Query("level"))
	jsonObj(c, logs, nil)
}

func (a *ApiService) GetNodes(c *gin.Context) {
	filter := service.NodeFilter{
		Enabled: c.Query("enabled") == "true",
		Search:  c.Query("search"),
	}
	if coreId, err := strconv.ParseUint(c.Query("coreId"), 10, 32); err == nil {
		filter.CoreConfigId = uint(coreId)
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if status := c.Query("status"); status != "" {
		filter.Status = []model.NodeStatus{model.NodeStatus(status)}
	}

	nodes, total, err := a.NodeService.GetNodes(filter)
	if err != nil {
		jsonMsg(c, "nodes", err)
		return
	}
	jsonObj(c, map[string]interface{}{"nodes": nodes, "total": total}, nil)
}

func (a *ApiService) SaveNode(c *gin.Context, loginUser string) {
	act := c.Request.FormValue("act")
	data := c.Request.FormValue("data")

	var err error
	switch act {
	case "new":
		var newNode model.Node
		if err = json.Unmarshal([]byte(data), &newNode); err == nil {
			_, err = a.NodeService.CreateNode(&newNode, loginUser)
		}
	case "update":
		var modified model.Node
		if err = json.Unmarshal([]byte(data), &modified); err == nil {
			_, err = a.NodeService.ModifyNode(modified.Id, &modified, loginUser)
		}
	case "del":
		var id uint
		if err = json.Unmarshal([]byte(data), &id); err == nil {
			err = a.NodeService.RemoveNode(id, loginUser)
		}
	default:
		err = common.NewError("unknown act: ", act)
	}
	jsonMsg(c, "node_save", err)
}

func (a *ApiService) RestartNode(c *gin.Context, loginUser string) {
	id, err := strconv.ParseUint(c.Request.FormValue("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "node_restart", err)
		return
	}
	err = a.NodeService.RestartNode(c.Request.Context(), uint(id), loginUser)
	jsonMsg(c, "node_restart", err)
}

func (a *ApiService) RestartAllNodes(c *gin.Context, loginUser string) {
	var coreId uint
	if id, err := strconv.ParseUint(c.Request.FormValue("coreId"), 10, 32); err == nil {
		coreId = uint(id)
	}
	err := a.NodeService.RestartAllNodes(context.Background(), coreId, loginUser)
	jsonMsg(c, "nodes_restart", err)
}

func (a *ApiService) ResetNodeUsage(c *gin.Context, loginUser string) {
	id, err := strconv.ParseUint(c.Request.FormValue("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "node_reset_usage", err)
		return
	}
	dbNode, err := a.NodeService.ResetNodeUsage(uint(id), loginUser)
	jsonObj(c, dbNode, err)
}

func (a *ApiService) SyncNodeUsers(c *gin.Context) {
	id, err := strconv.ParseUint(c.Request.FormValue("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "node_sync_users", err)
		return
	}
	flush := c.Request.FormValue("flush") == "true"

	dbNode, err := a.NodeService.SyncNodeUsers(c.Request.Context(), uint(id), flush)
	jsonObj(c, dbNode, err)
}

func (a *ApiService) GetNodeStats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "node_stats", err)
		return
	}
	stats, err := a.NodeService.GetNodeSystemStats(c.Request.Context(), uint(id))
	jsonObj(c, stats, err)
}

func (a *ApiService) GetNodesStats(c *gin.Context) {
	jsonObj(c, a.NodeService.GetNodesSystemStats(c.Request.Context()), nil)
}

func (a *ApiService) GetNodeStatsHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "node_stats_history", err)
		return
	}
	start, _ := strconv.ParseInt(c.Query("start"), 10, 64)
	end, _ := strconv.ParseInt(c.Query("end"), 10, 64)

	rows, err := a.StatsService.GetNodeStats(uint(id), start, end)
	jsonObj(c, rows, err)
}

func (a *ApiService) GetUserOnlineStats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "online_stats", err)
		return
	}
	stats, err := a.NodeService.GetUserOnlineStats(c.Request.Context(), uint(id), c.Query("user"))
	jsonObj(c, stats, err)
}

func (a *ApiService) GetUserIpList(c *gin.Context) {
	user := c.Query("user")
	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			jsonMsg(c, "ip_list", err)
			return
		}
		ips, err := a.NodeService.GetUserIpList(c.Request.Context(), uint(id), user)
		jsonObj(c, ips, err)
		return
	}

	ips, err := a.NodeService.GetUserIpListAllNodes(c.Request.Context(), user)
	jsonObj(c, ips, err)
}

func (a *ApiService) GetCores(c *gin.Context) {
	records, err := a.CoreService.GetAllConfigs()
	jsonObj(c, records, err)
}

func (a *ApiService) SaveCore(c *gin.Context) {
	act := c.Request.FormValue("act")
	data := c.Request.FormValue("data")
	err := a.CoreService.Save(act, json.RawMessage(data))
	jsonMsg(c, "core_save", err)
}

func (a *ApiService) GetClients(c *gin.Context) {
	clients, err := a.NodeService.GetAllClients()
	jsonObj(c, clients, err)
}

func (a *ApiService) RestartApp(c *gin.Context) {
	err := a.PanelService.RestartPanel(3 * time.Second)
	jsonMsg(c, "restartApp", err)
}

func (a *ApiService) SaveClient(c *gin.Context) {
	act := c.Request.FormValue("act")
	data := c.Request.FormValue("data")
	err := a.NodeService.ClientService.Save(act, json.RawMessage(data))
	jsonMsg(c, "client_save", err)
}
