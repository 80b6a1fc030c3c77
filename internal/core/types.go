package core

import "ohana/pkg/domain"

type (
	EntityType      = domain.EntityType
	Sex             = domain.Sex
	Name            = domain.Name
	Person          = domain.Person
	Location        = domain.Location
	LocationType    = domain.LocationType
	LifeEvent       = domain.LifeEvent
	Dataset         = domain.Dataset
	ValidationError = domain.ValidationError
)

const (
	EntityPerson   = domain.EntityPerson
	EntityLocation = domain.EntityLocation
)
