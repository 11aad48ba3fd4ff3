package models

import (
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"        json:"username"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	RefreshToken *string   `gorm:"type:text"                   json:"-"`
	CreatedAt    time.Time `                                   json:"createdAt"`
	UpdatedAt    time.Time `                                   json:"updatedAt"`
}

type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"                     json:"id"`
	Name        string    `gorm:"not null"                                        json:"name"`
	Description string    `gorm:"not null"                                        json:"description"`
	Price       float64   `gorm:"not null;check:chk_products_price,price >= 0"    json:"price"`
	Category    string    `gorm:"not null;index"                                  json:"category"`
	Quantity    int       `gorm:"not null;check:chk_products_quantity,quantity >= 0" json:"quantity"`
	IsActive    bool      `gorm:"not null;default:true;index"                     json:"isActive"`
	CreatedAt   time.Time `gorm:"index"                                           json:"createdAt"`
	UpdatedAt   time.Time `                                                       json:"updatedAt"`
}

// ProductPatch lists the fields an update may change. Nil means untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Quantity    *int
	IsActive    *bool
}
