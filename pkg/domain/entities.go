// Package domain defines the genealogy records, dataset shape, and error kinds
// shared by the ohana query engine, its loaders, and its transport adapters.
package domain

import "strings"

// EntityType identifies the kind of record held by the entity store.
type EntityType string

// Supported entity type identifiers used in errors and persistence buckets.
const (
	// EntityPerson identifies an individual person record.
	EntityPerson EntityType = "person"
	// EntityLocation identifies a place record.
	EntityLocation EntityType = "location"
)

// Sex enumerates the recorded sex of a person.
type Sex string

// Canonical sex values.
const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexOther   Sex = "OTHER"
	SexUnknown Sex = "UNKNOWN"
)

// Valid reports whether s is one of the canonical values.
func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexOther, SexUnknown:
		return true
	}
	return false
}

// LocationType enumerates the land division or administrative level of a place.
type LocationType string

// Canonical location types. The first four are the traditional Hawaiian land divisions.
const (
	LocationMokupuni LocationType = "MOKUPUNI" // island
	LocationMoku     LocationType = "MOKU"     // district
	LocationAhupuaa  LocationType = "AHUPUAA"  // land division within a moku
	LocationIli      LocationType = "ILI"      // subdivision of an ahupuaa
	LocationCity     LocationType = "CITY"
	LocationState    LocationType = "STATE"
	LocationCountry  LocationType = "COUNTRY"
)

// Valid reports whether t is one of the canonical values.
func (t LocationType) Valid() bool {
	switch t {
	case LocationMokupuni, LocationMoku, LocationAhupuaa, LocationIli, LocationCity, LocationState, LocationCountry:
		return true
	}
	return false
}

// Name is one recorded name of a person. A person may carry several (birth name, married name, ...).
type Name struct {
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	First  string `json:"first,omitempty" yaml:"first,omitempty"`
	Middle string `json:"middle,omitempty" yaml:"middle,omitempty"`
	Last   string `json:"last,omitempty" yaml:"last,omitempty"`
}

// Full joins the non-empty name parts with single spaces.
func (n Name) Full() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.First, n.Middle, n.Last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Note is free text attached to a record.
type Note struct {
	Text string `json:"text" yaml:"text"`
}

// Citation points at the source backing a fact.
type Citation struct {
	Source string `json:"source" yaml:"source"`
	Page   string `json:"page,omitempty" yaml:"page,omitempty"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Link is an external reference about a person.
type Link struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// GroupRef records membership in a group (church, society, union).
type GroupRef struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role,omitempty" yaml:"role,omitempty"`
}

// SchoolRef records attendance at a school.
type SchoolRef struct {
	Name  string `json:"name" yaml:"name"`
	Years string `json:"years,omitempty" yaml:"years,omitempty"`
}

// LifeEvent is a dated occurrence in a person's life. Date is kept verbatim;
// genealogical dates are too irregular ("abt 1850", "before 1900") to parse.
type LifeEvent struct {
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Date        string     `json:"date,omitempty" yaml:"date,omitempty"`
	PlaceID     *int64     `json:"place_id,omitempty" yaml:"place_id,omitempty"`
	Cause       string     `json:"cause,omitempty" yaml:"cause,omitempty"`
	Notes       []Note     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Citations   []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// Person is an individual in the population. Parents and Children hold ids
// of other persons; they are resolved through the entity store, never owned.
type Person struct {
	ID       int64       `json:"id" yaml:"id" validate:"gt=0"`
	Names    []Name      `json:"names" yaml:"names" validate:"dive"`
	Sex      Sex         `json:"sex" yaml:"sex" validate:"omitempty,sex"`
	Birth    *LifeEvent  `json:"birth,omitempty" yaml:"birth,omitempty"`
	Death    *LifeEvent  `json:"death,omitempty" yaml:"death,omitempty"`
	Events   []LifeEvent `json:"events,omitempty" yaml:"events,omitempty"`
	Parents  []int64     `json:"parents,omitempty" yaml:"parents,omitempty" validate:"dive,gt=0"`
	Children []int64     `json:"children,omitempty" yaml:"children,omitempty" validate:"dive,gt=0"`
	Groups   []GroupRef  `json:"groups,omitempty" yaml:"groups,omitempty"`
	Schools  []SchoolRef `json:"schools,omitempty" yaml:"schools,omitempty"`
	Notes    []Note      `json:"notes,omitempty" yaml:"notes,omitempty"`
	Links    []Link      `json:"links,omitempty" yaml:"links,omitempty"`
}

// DisplayName returns the first recorded full name, or an empty string.
func (p Person) DisplayName() string {
	for _, n := range p.Names {
		if full := n.Full(); full != "" {
			return full
		}
	}
	return ""
}

// Address is a postal address attached to a location.
type Address struct {
	Lines      []string `json:"lines,omitempty" yaml:"lines,omitempty"`
	City       string   `json:"city,omitempty" yaml:"city,omitempty"`
	State      string   `json:"state,omitempty" yaml:"state,omitempty"`
	PostalCode string   `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	Country    string   `json:"country,omitempty" yaml:"country,omitempty"`
}

// Location is a place referenced by life events. Coordinates are free-form strings.
type Location struct {
	ID          int64         `json:"id" yaml:"id" validate:"gt=0"`
	Name        string        `json:"name" yaml:"name" validate:"required"`
	Latitude    string        `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude   string        `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Address     *Address      `json:"address,omitempty" yaml:"address,omitempty"`
	Type        *LocationType `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,location_type"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Notes       []Note        `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Dataset is the population handed to the engine at startup.
type Dataset struct {
	People    []Person   `json:"people" yaml:"people"`
	Locations []Location `json:"locations" yaml:"locations"`
}
