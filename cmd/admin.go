package cmd

import (
	"fmt"

	"github.com/pasarfleet/p-ui/config"
	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/service"
)

func ResetAdmin() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	err = userService.UpdateFirstUser("admin", "admin")
	if err != nil {
		fmt.Println("reset admin credentials failed:", err)
	} else {
		fmt.Println("reset admin credentials success")
	}
}

func UpdateAdmin(username string, password string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	if username != "" || password != "" {
		userService := service.UserService{}
		err := userService.UpdateFirstUser(username, password)
		if err != nil {
			fmt.Println("update admin credentials failed:", err)
		} else {
			fmt.Println("update admin credentials success")
		}
	}
}

func ShowAdmin() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}
	userService := service.UserService{}
	user, err := userService.GetFirstUser()
	if err != nil {
		fmt.Println("get current user info failed:", err)
		return
	}
	if user.Username == "" || user.Password == "" {
		fmt.Println("current username or password is empty")
	}
	fmt.Println("First admin credentials:")
	fmt.Println("\tUsername:\t", user.Username)
	fmt.Println("\tPassword:\t", user.Password)
}
