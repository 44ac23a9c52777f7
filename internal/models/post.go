package models

import "time"

// GeoPoint is a GeoJSON point; Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }
func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Post struct {
	ID          string        `json:"id"`
	UserID      string        `json:"-"`
	Author      *Author       `json:"user,omitempty"`
	Description string        `json:"description,omitempty"`
	VoiceMsg    string        `json:"voiceMsg,omitempty"`
	Media       []string      `json:"media"`
	Location    GeoPoint      `json:"location"`
	Likes       []string      `json:"likes"`
	Comments    []PostComment `json:"comments"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type PostComment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
