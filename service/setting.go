package service

import (
	"strconv"
	"time"

	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
)

type SettingService struct {
}

func (s *SettingService) GetSetting(key string, defaultValue string) string {
	db := database.GetDB()
	var setting model.Setting
	err := db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return defaultValue
	}
	return setting.Value
}

func (s *SettingService) SetSetting(key string, value string) error {
	db := database.GetDB()
	var setting model.Setting
	err := db.Where("key = ?", key).First(&setting).Error
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	setting.Value = value
	return db.Save(&setting).Error
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	tz := s.GetSetting("timeLocation", "UTC")
	return time.LoadLocation(tz)
}

// GetNodeCheckInterval is the cron period, in minutes, of the fleet
// reconnect job.
func (s *SettingService) GetNodeCheckInterval() int {
	value := s.GetSetting("nodeCheckInterval", "1")
	interval, err := strconv.Atoi(value)
	if err != nil || interval < 1 {
		return 1
	}
	return interval
}

// GetStatsAge is the retention of node stat snapshots, in days.
func (s *SettingService) GetStatsAge() int {
	value := s.GetSetting("statsAge", "30")
	age, err := strconv.Atoi(value)
	if err != nil || age < 1 {
		return 30
	}
	return age
}
