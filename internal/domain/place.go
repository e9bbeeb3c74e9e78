package domain

type Place struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Latitude    float64
	Longitude   float64
	OwnerID     string
	HostName    string
	Amenities   []Amenity
	Reviews     []Review
}

type Amenity struct {
	ID   string
	Name string
}

// PlaceInput is what the gateway sends to the backend on create/update.
// Amenities holds selected amenity ids; an empty (non-nil) slice means
// "no amenities selected", which the backend expects as [].
type PlaceInput struct {
	Title       string
	Description string
	Price       float64
	Latitude    float64
	Longitude   float64
	Amenities   []string
}

// PlaceStats summarizes an owner's listings for the my-places page.
type PlaceStats struct {
	Total        int
	AveragePrice float64
	TotalReviews int
}
