package model

type Setting struct {
	Id    uint   `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"unique"`
	Value string `json:"value" form:"value"`
}

type User struct {
	Id       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"unique"`
	Password string `json:"password"`
}

type Tokens struct {
	Id     uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Token  string `json:"token" gorm:"unique;not null"`
	Desc   string `json:"desc"`
	Expiry int64  `json:"expiry"`
	UserId uint   `json:"userId"`
}
