package domain

type Review struct {
	ID      string
	PlaceID string
	Text    string
	Rating  int // 1..5
	Author  string
}
