package domain

import (
	"math"
	"strings"
	"time"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Listing is a postable rental unit.
//
// OwnerName is captured once at creation and never synchronised with later
// owner edits; it is a snapshot of who posted the listing. The live display
// name is joined at read time as the "owner" enrichment.
type Listing struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"ownerId"`
	OwnerName          string    `json:"ownerName"`
	Address            Address   `json:"address"`
	Rent               float64   `json:"rent"`
	Deposit            float64   `json:"deposit"`
	AvailableFrom      time.Time `json:"availableFrom"`
	RoomType           string    `json:"roomType"`
	NumberOfRooms      int       `json:"numberOfRooms"`
	NumberOfBathrooms  int       `json:"numberOfBathrooms"`
	SquareFootage      float64   `json:"squareFootage"`
	Amenities          []string  `json:"amenities"`
	PetsAllowed        bool      `json:"petsAllowed"`
	SmokingAllowed     bool      `json:"smokingAllowed"`
	ParkingAvailable   bool      `json:"parkingAvailable"`
	Images             []string  `json:"images"`
	Description        string    `json:"description"`
	IsAvailable        bool      `json:"isAvailable"`
	RequiredDocuments  []string  `json:"requiredDocuments"`
	TermsAndConditions string    `json:"termsAndConditions"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	Version            int64     `json:"version"`
}

// ListingInput is the client payload for create and update. Nil fields are
// left untouched on update. Ownership fields are deliberately absent.
type ListingInput struct {
	Address            *AddressInput `json:"address"`
	Rent               *float64      `json:"rent"`
	Deposit            *float64      `json:"deposit"`
	AvailableFrom      *time.Time    `json:"availableFrom"`
	RoomType           *string       `json:"roomType"`
	NumberOfRooms      *int          `json:"numberOfRooms"`
	NumberOfBathrooms  *int          `json:"numberOfBathrooms"`
	SquareFootage      *float64      `json:"squareFootage"`
	Amenities          *[]string     `json:"amenities"`
	PetsAllowed        *bool         `json:"petsAllowed"`
	SmokingAllowed     *bool         `json:"smokingAllowed"`
	ParkingAvailable   *bool         `json:"parkingAvailable"`
	Images             *[]string     `json:"images"`
	Description        *string       `json:"description"`
	IsAvailable        *bool         `json:"isAvailable"`
	RequiredDocuments  *[]string     `json:"requiredDocuments"`
	TermsAndConditions *string       `json:"termsAndConditions"`
}

type AddressInput struct {
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zipCode"`
}

const (
	MaxMediaReferences  = 20
	maxMediaRefLength   = 2048
	maxListStringLength = 200
)

// NewListing builds a listing from input. Defaults follow the original
// schema: isAvailable true, every flag false.
func NewListing(in ListingInput) (Listing, error) {
	l := Listing{
		IsAvailable:       true,
		Amenities:         []string{},
		Images:            []string{},
		RequiredDocuments: []string{},
	}
	if err := requireCreateFields(in); err != nil {
		return Listing{}, err
	}
	l.Apply(in)
	return l, l.Validate()
}

func requireCreateFields(in ListingInput) error {
	if in.Address == nil {
		return NewValidationError("please provide the address")
	}
	switch {
	case in.Address.Street == nil:
		return NewValidationError("please provide the street address")
	case in.Address.City == nil:
		return NewValidationError("please provide the city")
	case in.Address.State == nil:
		return NewValidationError("please provide the state")
	case in.Address.ZipCode == nil:
		return NewValidationError("please provide the ZIP code")
	case in.Rent == nil:
		return NewValidationError("please provide the rent amount")
	case in.Deposit == nil:
		return NewValidationError("please provide the deposit amount")
	case in.AvailableFrom == nil:
		return NewValidationError("please provide the date when the apartment is available from")
	case in.RoomType == nil:
		return NewValidationError("please specify if the room is private or shared")
	case in.NumberOfRooms == nil:
		return NewValidationError("please provide the number of rooms")
	case in.NumberOfBathrooms == nil:
		return NewValidationError("please provide the number of bathrooms")
	case in.TermsAndConditions == nil:
		return NewValidationError("please provide the terms and conditions")
	}
	return nil
}

// Apply copies the non-nil input fields onto l.
func (l *Listing) Apply(in ListingInput) {
	if a := in.Address; a != nil {
		setString(&l.Address.Street, a.Street)
		setString(&l.Address.City, a.City)
		setString(&l.Address.State, a.State)
		setString(&l.Address.ZipCode, a.ZipCode)
	}
	if in.Rent != nil {
		l.Rent = *in.Rent
	}
	if in.Deposit != nil {
		l.Deposit = *in.Deposit
	}
	if in.AvailableFrom != nil {
		l.AvailableFrom = in.AvailableFrom.UTC()
	}
	setString(&l.RoomType, in.RoomType)
	if in.NumberOfRooms != nil {
		l.NumberOfRooms = *in.NumberOfRooms
	}
	if in.NumberOfBathrooms != nil {
		l.NumberOfBathrooms = *in.NumberOfBathrooms
	}
	if in.SquareFootage != nil {
		l.SquareFootage = *in.SquareFootage
	}
	setList(&l.Amenities, in.Amenities)
	if in.PetsAllowed != nil {
		l.PetsAllowed = *in.PetsAllowed
	}
	if in.SmokingAllowed != nil {
		l.SmokingAllowed = *in.SmokingAllowed
	}
	if in.ParkingAvailable != nil {
		l.ParkingAvailable = *in.ParkingAvailable
	}
	setList(&l.Images, in.Images)
	setString(&l.Description, in.Description)
	if in.IsAvailable != nil {
		l.IsAvailable = *in.IsAvailable
	}
	setList(&l.RequiredDocuments, in.RequiredDocuments)
	setString(&l.TermsAndConditions, in.TermsAndConditions)
}

func (l Listing) Validate() error {
	if l.Address.Street == "" || l.Address.City == "" || l.Address.State == "" || l.Address.ZipCode == "" {
		return NewValidationError("address requires street, city, state and zipCode")
	}
	numbers := []struct {
		name  string
		value float64
	}{
		{"rent", l.Rent},
		{"deposit", l.Deposit},
		{"squareFootage", l.SquareFootage},
		{"numberOfRooms", float64(l.NumberOfRooms)},
		{"numberOfBathrooms", float64(l.NumberOfBathrooms)},
	}
	for _, n := range numbers {
		if n.value < 0 || math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return NewValidationError("%s must be a non-negative number", n.name)
		}
	}
	if l.RoomType != "private" && l.RoomType != "shared" {
		return NewValidationError("roomType must be one of private, shared")
	}
	if l.AvailableFrom.IsZero() {
		return NewValidationError("availableFrom is required")
	}
	if l.TermsAndConditions == "" {
		return NewValidationError("please provide the terms and conditions")
	}
	if len(l.Images) > MaxMediaReferences {
		return NewValidationError("at most %d images are allowed", MaxMediaReferences)
	}
	for _, ref := range l.Images {
		if ref == "" || len(ref) > maxMediaRefLength {
			return NewValidationError("invalid image reference")
		}
	}
	for _, list := range [][]string{l.Amenities, l.RequiredDocuments} {
		for _, v := range list {
			if len(v) > maxListStringLength {
				return NewValidationError("list entries cannot exceed %d characters", maxListStringLength)
			}
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setList(dst *[]string, src *[]string) {
	if src == nil {
		return
	}
	out := make([]string, 0, len(*src))
	for _, v := range *src {
		out = append(out, strings.TrimSpace(v))
	}
	*dst = out
}
