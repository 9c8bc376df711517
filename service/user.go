package service

import (
	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/util/common"
)

type UserService struct {
}

func (s *UserService) Login(username string, password string) (*model.User, error) {
	db := database.GetDB()
	var user model.User
	err := db.Where("username = ? AND password = ?", username, password).First(&user).Error
	if err != nil {
		return nil, common.NewError("wrong username or password")
	}
	return &user, nil
}

func (s *UserService) GetFirstUser() (*model.User, error) {
	db := database.GetDB()
	var user model.User
	err := db.First(&user).Error
	return &user, err
}

func (s *UserService) UpdateFirstUser(username string, password string) error {
	user, err := s.GetFirstUser()
	if err != nil {
		return err
	}
	if username != "" {
		user.Username = username
	}
	if password != "" {
		user.Password = password
	}
	db := database.GetDB()
	return db.Save(user).Error
}

func (s *UserService) ChangePass(id uint, oldPass string, newPass string) error {
	db := database.GetDB()
	var user model.User
	err := db.Where("id = ? AND password = ?", id, oldPass).First(&user).Error
	if err != nil {
		return common.NewError("current password is wrong")
	}
	user.Password = newPass
	return db.Save(&user).Error
}
