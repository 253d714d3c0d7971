package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Entity":
		return db.AutoMigrate(Entity{})

	case "Link":
		return db.AutoMigrate(Link{})

	case "Position":
		return db.AutoMigrate(Position{})
	}
	return nil
}
