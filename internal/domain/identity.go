package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the tag of the Identity union; it is implied by partition membership.
type Role string

const (
	RoleApplicant     Role = "applicant"
	RoleOwner         Role = "owner"
	RoleAdministrator Role = "admin"
)

// ResolutionOrder is the fixed order partitions are probed in when a subject id
// carries no partition tag. Administrators are last so an id collision never
// widens privileges.
var ResolutionOrder = []Role{RoleApplicant, RoleOwner, RoleAdministrator}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleApplicant, RoleOwner, RoleAdministrator:
		return Role(s), true
	}
	return "", false
}

// Identity is an account of one of the three partitions. Exactly one of the
// variant payloads is set, matching Role (administrators carry none).
type Identity struct {
	ID         string
	Role       Role
	Email      string
	Name       string
	SecretHash string `json:"-"`

	Applicant *ApplicantProfile
	Owner     *OwnerProfile

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ApplicantProfile struct {
	Program           string   `json:"program"`
	LinkedinURL       string   `json:"linkedinUrl,omitempty"`
	HomeCity          string   `json:"homeCity,omitempty"`
	HomeCountry       string   `json:"homeCountry,omitempty"`
	RoomPreference    string   `json:"roomPreference"`
	SmokingPreference string   `json:"smokingPreference"`
	AlcoholPreference string   `json:"alcoholPreference"`
	PetPreference     string   `json:"petPreference"`
	FoodPreference    string   `json:"foodPreference"`
	MedicalCondition  string   `json:"medicalCondition,omitempty"`
	OtherRequirements string   `json:"otherRequirements,omitempty"`
	IsNewArrival      bool     `json:"isNewArrival"`
	SavedListings     []string `json:"savedListings"`
}

type OwnerProfile struct {
	Phone                  string `json:"phone"`
	PreferredContactMethod string `json:"preferredContactMethod"`
}

// PublicIdentity is the only outward-facing shape of an Identity.
type PublicIdentity struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Applicant *ApplicantProfile `json:"applicant,omitempty"`
	Owner     *OwnerProfile     `json:"owner,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (i Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:        i.ID,
		Role:      i.Role,
		Email:     i.Email,
		Name:      i.Name,
		Applicant: i.Applicant,
		Owner:     i.Owner,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
)

const maxNameLength = 50

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize lowercases the email, trims free text and fills variant defaults.
func (i *Identity) Normalize() {
	i.Email = NormalizeEmail(i.Email)
	i.Name = strings.TrimSpace(i.Name)
	if i.Applicant != nil {
		a := i.Applicant
		a.Program = strings.TrimSpace(a.Program)
		a.RoomPreference = defaultString(a.RoomPreference, "private")
		a.SmokingPreference = defaultString(a.SmokingPreference, "noSmoke")
		a.AlcoholPreference = defaultString(a.AlcoholPreference, "noDrink")
		a.PetPreference = defaultString(a.PetPreference, "noPet")
		a.FoodPreference = defaultString(a.FoodPreference, "nonVeg")
		if a.SavedListings == nil {
			a.SavedListings = []string{}
		}
	}
	if i.Owner != nil {
		i.Owner.Phone = strings.TrimSpace(i.Owner.Phone)
		i.Owner.PreferredContactMethod = defaultString(i.Owner.PreferredContactMethod, "email")
	}
}

// Validate checks profile attributes. It does not look at secret material.
func (i Identity) Validate() error {
	if i.Name == "" {
		return NewValidationError("please provide a name")
	}
	if utf8.RuneCountInString(i.Name) > maxNameLength {
		return NewValidationError("name cannot be more than %d characters", maxNameLength)
	}
	if i.Email == "" {
		return NewValidationError("please provide an email")
	}
	if !emailPattern.MatchString(i.Email) {
		return NewValidationError("%s is not a valid email", i.Email)
	}

	switch i.Role {
	case RoleApplicant:
		if i.Applicant == nil || i.Owner != nil {
			return NewValidationError("applicant profile required")
		}
		a := i.Applicant
		if a.Program == "" {
			return NewValidationError("please provide your program name")
		}
		checks := []struct {
			name, value string
			allowed     []string
		}{
			{"roomPreference", a.RoomPreference, []string{"private", "shared"}},
			{"smokingPreference", a.SmokingPreference, []string{"noSmoke", "smoke", "noSmokeHouse"}},
			{"alcoholPreference", a.AlcoholPreference, []string{"noDrink", "drink", "noDrinkHouse"}},
			{"petPreference", a.PetPreference, []string{"noPet", "hasPet", "acceptsPet"}},
			{"foodPreference", a.FoodPreference, []string{"veg", "nonVeg", "vegHouse"}},
		}
		for _, c := range checks {
			if !oneOf(c.value, c.allowed) {
				return NewValidationError("%s must be one of %s", c.name, strings.Join(c.allowed, ", "))
			}
		}
	case RoleOwner:
		if i.Owner == nil || i.Applicant != nil {
			return NewValidationError("owner profile required")
		}
		if !phonePattern.MatchString(i.Owner.Phone) {
			return NewValidationError("%s is not a valid phone number", i.Owner.Phone)
		}
		if !oneOf(i.Owner.PreferredContactMethod, []string{"email", "phone"}) {
			return NewValidationError("preferredContactMethod must be one of email, phone")
		}
	case RoleAdministrator:
		if i.Applicant != nil || i.Owner != nil {
			return NewValidationError("administrators carry no profile")
		}
	default:
		return NewValidationError("unknown role %q", i.Role)
	}
	return nil
}

// OwnerSummary is the enrichment projection of an Owner joined into listings.
type OwnerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OwnerContact is the single-item enrichment projection.
type OwnerContact struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	PreferredContactMethod string `json:"preferredContactMethod"`
}

func (i Identity) OwnerSummary() OwnerSummary {
	return OwnerSummary{ID: i.ID, Name: i.Name}
}

func (i Identity) OwnerContact() OwnerContact {
	c := OwnerContact{ID: i.ID, Name: i.Name, Email: i.Email}
	if i.Owner != nil {
		c.Phone = i.Owner.Phone
		c.PreferredContactMethod = i.Owner.PreferredContactMethod
	}
	return c
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
