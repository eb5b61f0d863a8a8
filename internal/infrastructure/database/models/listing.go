package models

import (
	"time"

	"github.com/lib/pq"
)

type Address struct {
	Street  string `json:"street" gorm:"type:text;not null"`
	City    string `json:"city" gorm:"type:text;not null;index"`
	State   string `json:"state" gorm:"type:text;not null"`
	ZipCode string `json:"zipCode" gorm:"type:text;not null"`
}

type Listing struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:text"`
	OwnerID            string         `json:"ownerId" gorm:"type:text;not null;index"`
	OwnerName          string         `json:"ownerName" gorm:"type:text;not null"`
	Address            Address        `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Rent               float64        `json:"rent" gorm:"type:double precision;not null;index"`
	Deposit            float64        `json:"deposit" gorm:"type:double precision;not null"`
	AvailableFrom      time.Time      `json:"availableFrom" gorm:"type:timestamp with time zone;not null"`
	RoomType           string         `json:"roomType" gorm:"type:text;not null"`
	NumberOfRooms      int            `json:"numberOfRooms" gorm:"not null"`
	NumberOfBathrooms  int            `json:"numberOfBathrooms" gorm:"not null"`
	SquareFootage      float64        `json:"squareFootage" gorm:"type:double precision;not null;default:0"`
	Amenities          pq.StringArray `json:"amenities" gorm:"type:text[];not null;default:'{}'"`
	PetsAllowed        bool           `json:"petsAllowed" gorm:"not null;default:false"`
	SmokingAllowed     bool           `json:"smokingAllowed" gorm:"not null;default:false"`
	ParkingAvailable   bool           `json:"parkingAvailable" gorm:"not null;default:false"`
	Images             pq.StringArray `json:"images" gorm:"type:text[];not null;default:'{}'"`
	Description        string         `json:"description" gorm:"type:text"`
	IsAvailable        bool           `json:"isAvailable" gorm:"not null"`
	RequiredDocuments  pq.StringArray `json:"requiredDocuments" gorm:"type:text[];not null;default:'{}'"`
	TermsAndConditions string         `json:"termsAndConditions" gorm:"type:text;not null"`
	CreatedAt          time.Time      `json:"createdAt" gorm:"type:timestamp with time zone;not null;index;autoCreateTime:false"`
	UpdatedAt          time.Time      `json:"updatedAt" gorm:"type:timestamp with time zone;not null;autoUpdateTime:false"`
	Version            int64          `json:"version" gorm:"not null;default:1"`
}
