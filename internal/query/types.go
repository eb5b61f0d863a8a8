package query

import (
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

// Kind is the value type a field is coerced to before comparison.
type Kind int

const (
	KindNumber Kind = iota
	KindInteger
	KindDate
	KindEnum
	KindBool
	KindString
)

// Field describes one listing attribute exposed to clients.
type Field struct {
	Name     string
	Column   string
	Kind     Kind
	Enum     []string
	Filter   bool
	Sortable bool
}

// Operators returns the comparison operators the field accepts.
func (f Field) Operators() []domain.Operator {
	switch f.Kind {
	case KindNumber, KindInteger, KindDate:
		return []domain.Operator{domain.OpEq, domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte}
	default:
		return []domain.Operator{domain.OpEq}
	}
}

func (f Field) allows(op domain.Operator) bool {
	for _, o := range f.Operators() {
		if o == op {
			return true
		}
	}
	return false
}

var registry = map[string]Field{
	"id":                {Name: "id", Column: "id", Kind: KindString, Sortable: true},
	"ownerId":           {Name: "ownerId", Column: "owner_id", Kind: KindString, Filter: true},
	"address.city":      {Name: "address.city", Column: "address_city", Kind: KindString, Filter: true},
	"address.state":     {Name: "address.state", Column: "address_state", Kind: KindString, Filter: true},
	"address.zipCode":   {Name: "address.zipCode", Column: "address_zip_code", Kind: KindString, Filter: true},
	"rent":              {Name: "rent", Column: "rent", Kind: KindNumber, Filter: true, Sortable: true},
	"deposit":           {Name: "deposit", Column: "deposit", Kind: KindNumber, Filter: true, Sortable: true},
	"squareFootage":     {Name: "squareFootage", Column: "square_footage", Kind: KindNumber, Filter: true, Sortable: true},
	"numberOfRooms":     {Name: "numberOfRooms", Column: "number_of_rooms", Kind: KindInteger, Filter: true, Sortable: true},
	"numberOfBathrooms": {Name: "numberOfBathrooms", Column: "number_of_bathrooms", Kind: KindInteger, Filter: true, Sortable: true},
	"availableFrom":     {Name: "availableFrom", Column: "available_from", Kind: KindDate, Filter: true, Sortable: true},
	"createdAt":         {Name: "createdAt", Column: "created_at", Kind: KindDate, Filter: true, Sortable: true},
	"updatedAt":         {Name: "updatedAt", Column: "updated_at", Kind: KindDate, Filter: true, Sortable: true},
	"roomType":          {Name: "roomType", Column: "room_type", Kind: KindEnum, Enum: []string{"private", "shared"}, Filter: true},
	"petsAllowed":       {Name: "petsAllowed", Column: "pets_allowed", Kind: KindBool, Filter: true},
	"smokingAllowed":    {Name: "smokingAllowed", Column: "smoking_allowed", Kind: KindBool, Filter: true},
	"parkingAvailable":  {Name: "parkingAvailable", Column: "parking_available", Kind: KindBool, Filter: true},
	"isAvailable":       {Name: "isAvailable", Column: "is_available", Kind: KindBool, Filter: true},
}

var aliases = map[string]string{
	"owner": "ownerId",
}

// Lookup resolves a client-facing field name or alias.
func Lookup(name string) (Field, bool) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	f, ok := registry[name]
	return f, ok
}

// DocumentFields is the order top-level listing fields are emitted in.
var DocumentFields = []string{
	"id",
	"ownerId",
	"ownerName",
	"address",
	"rent",
	"deposit",
	"availableFrom",
	"roomType",
	"numberOfRooms",
	"numberOfBathrooms",
	"squareFootage",
	"amenities",
	"petsAllowed",
	"smokingAllowed",
	"parkingAvailable",
	"images",
	"description",
	"isAvailable",
	"requiredDocuments",
	"termsAndConditions",
	"createdAt",
	"updatedAt",
	"version",
}

// housekeeping fields are only emitted when selected explicitly.
var housekeeping = map[string]bool{
	"version": true,
}

// DefaultFields is the projection used when the client selects none.
func DefaultFields() []string {
	fields := make([]string, 0, len(DocumentFields))
	for _, f := range DocumentFields {
		if !housekeeping[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

func selectable(name string) bool {
	for _, f := range DocumentFields {
		if f == name {
			return true
		}
	}
	return false
}

// EnrichmentKey is where the owner summary is joined into each document.
const EnrichmentKey = "owner"
