package models

import "time"

// TrackDateLayout formats track_start as MM-DD-YY.
const TrackDateLayout = "01-02-06"

type Store struct {
	ID         int64   `json:"id"`
	Domain     string  `json:"domain"`
	TrackStart string  `json:"track_start"`
	TotalSales float64 `json:"total_sales"`
	WeekSales  float64 `json:"week_sales"`
}

type Product struct {
	ID         int64   `json:"id"`
	StoreID    int64   `json:"store_id"`
	Handle     string  `json:"handle"`
	Title      string  `json:"title"`
	Image      string  `json:"image"`
	Price      string  `json:"price"`
	Bought     string  `json:"bought"` // upstream updated_at
	Post       string  `json:"post"`   // upstream published_at
	TotalPrice float64 `json:"total_price"`
	TotalSales float64 `json:"total_sales"`
	TrackStart string  `json:"track_start"`
}

type Theme struct {
	ID             int64
	Name           string
	Style          string
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
	FontPrimary    string
	FontSecondary  string
	CreatedAt      time.Time
	PreviewData    string // JSON copy of colors, fonts and style
}

type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

type Fonts struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func (t *Theme) Colors() Colors {
	return Colors{Primary: t.PrimaryColor, Secondary: t.SecondaryColor, Accent: t.AccentColor}
}

func (t *Theme) Fonts() Fonts {
	return Fonts{Primary: t.FontPrimary, Secondary: t.FontSecondary}
}

type StoreData struct {
	Store    Store
	Products []Product
}
