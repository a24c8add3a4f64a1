package domain

import "time"

type Listing struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Sector    string    `json:"sector"`
	Skills    []string  `json:"skills"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}
