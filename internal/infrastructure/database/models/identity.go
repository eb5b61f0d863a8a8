package models

import (
	"time"

	"github.com/lib/pq"
)

// Account holds the columns every identity partition shares. Email is unique
// within each partition table only.
type Account struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text"`
	Email      string    `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Name       string    `json:"name" gorm:"type:text;not null"`
	SecretHash string    `json:"-" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;autoCreateTime:false"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;autoUpdateTime:false"`
}

type Applicant struct {
	Account
	Program           string         `json:"program" gorm:"type:text;not null"`
	LinkedinURL       string         `json:"linkedinUrl" gorm:"type:text"`
	HomeCity          string         `json:"homeCity" gorm:"type:text"`
	HomeCountry       string         `json:"homeCountry" gorm:"type:text"`
	RoomPreference    string         `json:"roomPreference" gorm:"type:text;not null"`
	SmokingPreference string         `json:"smokingPreference" gorm:"type:text;not null"`
	AlcoholPreference string         `json:"alcoholPreference" gorm:"type:text;not null"`
	PetPreference     string         `json:"petPreference" gorm:"type:text;not null"`
	FoodPreference    string         `json:"foodPreference" gorm:"type:text;not null"`
	MedicalCondition  string         `json:"medicalCondition" gorm:"type:text"`
	OtherRequirements string         `json:"otherRequirements" gorm:"type:text"`
	IsNewArrival      bool           `json:"isNewArrival" gorm:"not null;default:false"`
	SavedListings     pq.StringArray `json:"savedListings" gorm:"type:text[];not null;default:'{}'"`
}

type Owner struct {
	Account
	Phone                  string `json:"phone" gorm:"type:text;not null"`
	PreferredContactMethod string `json:"preferredContactMethod" gorm:"type:text;not null"`
}

type Administrator struct {
	Account
}
