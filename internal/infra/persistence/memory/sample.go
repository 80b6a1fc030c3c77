package memory

import "ohana/pkg/domain"

// Sample returns a small population used by the serve command when no
// dataset has been seeded and by tests across the module.
//
// Jason (1) and Aulii (2) are each linked to one parent; the two families
// share no relatives, so no path connects them.
func Sample() domain.Dataset {
	oahu, kona, waikiki, honolulu := int64(100), int64(101), int64(102), int64(103)
	island := domain.LocationMokupuni
	district := domain.LocationMoku
	division := domain.LocationAhupuaa
	city := domain.LocationCity
	return domain.Dataset{
		People: []domain.Person{
			{
				ID:      1,
				Names:   []domain.Name{{First: "Jason", Last: "Momoa"}},
				Sex:     domain.SexMale,
				Birth:   &domain.LifeEvent{Date: "1979-08-01", PlaceID: &honolulu},
				Parents: []int64{3},
			},
			{
				ID:      2,
				Names:   []domain.Name{{First: "Aulii", Last: "Cravalho"}},
				Sex:     domain.SexFemale,
				Birth:   &domain.LifeEvent{Date: "2000-11-22", PlaceID: &kona},
				Parents: []int64{4},
			},
			{
				ID:       3,
				Names:    []domain.Name{{First: "Mommy", Last: "Momoa"}},
				Sex:      domain.SexFemale,
				Children: []int64{1},
			},
			{
				ID:       4,
				Names:    []domain.Name{{First: "Mommy", Last: "Cravalho"}},
				Sex:      domain.SexFemale,
				Children: []int64{2},
				Events:   []domain.LifeEvent{{Description: "Moved to Waikīkī", PlaceID: &waikiki}},
			},
		},
		Locations: []domain.Location{
			{ID: oahu, Name: "Oʻahu", Type: &island, Description: "The gathering place"},
			{ID: kona, Name: "Kona", Type: &district},
			{ID: waikiki, Name: "Waikīkī", Type: &division},
			{ID: honolulu, Name: "Honolulu", Type: &city, Address: &domain.Address{State: "HI", Country: "USA"}},
		},
	}
}
