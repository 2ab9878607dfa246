package db

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	gorm.Model
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string `gorm:"size:17;uniqueIndex;not null"`
}

type Manager struct {
	gorm.Model
	FirstName string
	LastName  string
	Email     string `gorm:"size:254;uniqueIndex;not null"`
}

type Restaurant struct {
	gorm.Model
	Name      string
	Address   string
	ManagerID uint `gorm:"uniqueIndex;not null"`
}

type Item struct {
	gorm.Model
	RestaurantID uint `gorm:"index;not null"`
	Name         string
	Description  string
	Points       int `gorm:"not null"` // cost
}

// CustomerPoints is the ledger entry for one customer at one restaurant.
type CustomerPoints struct {
	ID            uint      `gorm:"primarykey"`
	CustomerID    uint      `gorm:"uniqueIndex:idx_customer_restaurant;not null"`
	RestaurantID  uint      `gorm:"uniqueIndex:idx_customer_restaurant;index;not null"`
	Points        int       `gorm:"not null;default:0"`
	GiftEligible  bool      `gorm:"not null;default:false"`
	LastAwardedAt *time.Time
	UpdatedAt     time.Time
}

func (CustomerPoints) TableName() string {
	return "customer_points"
}

type ItemRedemption struct {
	ID         uint   `gorm:"primarykey"`
	CustomerID uint   `gorm:"index;not null"`
	ItemID     uint   `gorm:"index;not null"`
	Code       string `gorm:"size:36;uniqueIndex;not null"`
	CreatedAt  time.Time
}

type RestaurantQR struct {
	ID           uint   `gorm:"primarykey"`
	RestaurantID uint   `gorm:"uniqueIndex;not null"`
	Code         string `gorm:"size:36;uniqueIndex;not null"`
	UpdatedAt    time.Time
}

type CodeKind string

const (
	PhoneCode CodeKind = "phone"
	EmailCode CodeKind = "email"
)

// OneTimeCode stores a bcrypt hash of the code, never the code itself.
type OneTimeCode struct {
	ID         uint     `gorm:"primarykey"`
	Kind       CodeKind `gorm:"size:8;uniqueIndex:idx_kind_identifier;not null"`
	Identifier string   `gorm:"size:254;uniqueIndex:idx_kind_identifier;not null"`
	CodeHash   string   `gorm:"not null"`
	IsVerified bool
	Attempts   int       `gorm:"not null;default:0"`
	ExpiresAt  time.Time `gorm:"index"`
	CreatedAt  time.Time
}

type Friendship struct {
	ID         uint `gorm:"primarykey"`
	CustomerID uint `gorm:"uniqueIndex:idx_customer_friend;not null"`
	FriendID   uint `gorm:"uniqueIndex:idx_customer_friend;not null"`
	CreatedAt  time.Time
}

type Referral struct {
	ID           uint   `gorm:"primarykey"`
	PhoneNumber  string `gorm:"size:17;uniqueIndex;not null"`
	CustomerID   uint   `gorm:"not null"`
	RestaurantID uint   `gorm:"not null"`
	CreatedAt    time.Time
}

type PointReason string

const (
	ReasonAward    PointReason = "award"
	ReasonGift     PointReason = "gift"
	ReasonReferral PointReason = "referral"
	ReasonRedeem   PointReason = "redeem"
)

// PointEvent is an append-only record of every ledger mutation.
type PointEvent struct {
	ID           uint        `gorm:"primarykey"`
	CustomerID   uint        `gorm:"index;not null"`
	RestaurantID uint        `gorm:"index;not null"`
	Delta        int         `gorm:"not null"`
	Reason       PointReason `gorm:"size:16;not null"`
	CreatedAt    time.Time
}

func allModels() []any {
	return []any{
		&Customer{}, &Manager{}, &Restaurant{}, &Item{},
		&CustomerPoints{}, &ItemRedemption{}, &RestaurantQR{},
		&OneTimeCode{}, &Friendship{}, &Referral{}, &PointEvent{},
	}
}
