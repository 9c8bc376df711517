package api

import (
	"strings"

	"github.com/pasarfleet/p-ui/util/common"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	*ApiService
}

func NewAPIHandler(g *gin.RouterGroup, apiService *ApiService) {
	a := &APIHandler{
		ApiService: apiService,
	}
	a.initRouter(g)
}

func (a *APIHandler) initRouter(g *gin.RouterGroup) {
	g.Use(func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasSuffix(path, "login") {
			checkLogin(c)
		}
	})
	g.POST("/:postAction", a.postHandler)
	g.GET("/:getAction", a.getHandler)
}

func (a *APIHandler) postHandler(c *gin.Context) {
	loginUser := GetLoginUser(c)
	action := c.Param("postAction")

	switch action {
	case "login":
		a.ApiService.Login(c)
	case "changePass":
		a.ApiService.ChangePass(c)
	case "node_save":
		a.ApiService.SaveNode(c, loginUser)
	case "node_restart":
		a.ApiService.RestartNode(c, loginUser)
	case "node_reset_usage":
		a.ApiService.ResetNodeUsage(c, loginUser)
	case "node_sync_users":
		a.ApiService.SyncNodeUsers(c)
	case "nodes_restart":
		a.ApiService.RestartAllNodes(c, loginUser)
	case "core_save":
		a.ApiService.SaveCore(c)
	case "client_save":
		a.ApiService.SaveClient(c)
	case "restartApp":
		a.ApiService.RestartApp(c)
	default:
		jsonMsg(c, "failed", common.NewError("unknown action: ", action))
	}
}

func (a *APIHandler) getHandler(c *gin.Context) {
	action := c.Param("getAction")

	switch action {
	case "logout":
		a.ApiService.Logout(c)
	case "status":
		a.ApiService.GetStatus(c)
	case "logs":
		a.ApiService.GetPanelLogs(c)
	case "nodes":
		a.ApiService.GetNodes(c)
	case "node_stats":
		a.ApiService.GetNodeStats(c)
	case "nodes_stats":
		a.ApiService.GetNodesStats(c)
	case "node_stats_history":
		a.ApiService.GetNodeStatsHistory(c)
	case "node_logs":
		a.ApiService.StreamNodeLogs(c)
	case "online_stats":
		a.ApiService.GetUserOnlineStats(c)
	case "ip_list":
		a.ApiService.GetUserIpList(c)
	case "cores":
		a.ApiService.GetCores(c)
	case "clients":
		a.ApiService.GetClients(c)
	default:
		jsonMsg(c, "failed", common.NewError("unknown action: ", action))
	}
}
