package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/logger"
)

type msgResponse struct {
	Success bool        `json:"success"`
	Msg     string      `json:"msg"`
	Obj     interface{} `json:"obj,omitempty"`
}

func jsonMsg(c *gin.Context, msg string, err error) {
	if err == nil {
		c.JSON(http.StatusOK, msgResponse{Success: true, Msg: msg})
		return
	}
	logger.Warning(msg, " failed: ", err)
	c.JSON(http.StatusOK, msgResponse{Success: false, Msg: msg + ": " + err.Error()})
}

func jsonObj(c *gin.Context, obj interface{}, err error) {
	if err != nil {
		c.JSON(http.StatusOK, msgResponse{Success: false, Msg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgResponse{Success: true, Obj: obj})
}

const loginUserKey = "loginUser"

func checkLogin(c *gin.Context) {
	token := c.GetHeader("Token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, msgResponse{Success: false, Msg: "login required"})
		return
	}

	db := database.GetDB()
	var dbToken model.Tokens
	err := db.Where("token = ?", token).First(&dbToken).Error
	if err != nil || (dbToken.Expiry > 0 && dbToken.Expiry < time.Now().Unix()) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, msgResponse{Success: false, Msg: "invalid token"})
		return
	}

	var user model.User
	if err := db.First(&user, dbToken.UserId).Error; err == nil {
		c.Set(loginUserKey, user.Username)
	}
}

func GetLoginUser(c *gin.Context) string {
	return c.GetString(loginUserKey)
}
