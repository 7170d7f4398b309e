package data

import (
	"strings"
	"time"

	"github.com/aoideee/catalogs/internal/validator"
)

// Rating is a PEGI age classification.
type Rating string

const (
	RatingPEGI3  Rating = "PEGI 3"
	RatingPEGI7  Rating = "PEGI 7"
	RatingPEGI12 Rating = "PEGI 12"
	RatingPEGI16 Rating = "PEGI 16"
	RatingPEGI18 Rating = "PEGI 18"
)

// Ratings lists every recognized Rating literal.
var Ratings = []string{
	string(RatingPEGI3),
	string(RatingPEGI7),
	string(RatingPEGI12),
	string(RatingPEGI16),
	string(RatingPEGI18),
}

// Game is a single video game entry, stored in the "games" table.
type Game struct {
	GameID      string    `json:"game_id" db:"game_id"`
	Name        string    `json:"name" db:"name"`
	Genre       string    `json:"genre" db:"genre"`
	Platform    string    `json:"platform" db:"platform"`
	ReleaseDate time.Time `json:"release_date" db:"release_date"`
	Rating      Rating    `json:"rating" db:"rating"`
	Description string    `json:"description" db:"description"`
}

func (g Game) Identifier() string { return g.GameID }

// Normalized trims the free-text fields and moves the release date to UTC.
func (g Game) Normalized() Game {
	g.Name = strings.TrimSpace(g.Name)
	g.Genre = strings.TrimSpace(g.Genre)
	g.Platform = strings.TrimSpace(g.Platform)
	g.Description = strings.TrimSpace(g.Description)
	g.ReleaseDate = g.ReleaseDate.UTC()
	return g
}

// Validate depends on now for release_date, so the same game can pass today
// and would have failed yesterday.
func (g Game) Validate(v *validator.Validator, now time.Time) {
	v.Check(validator.Matches(g.GameID, validator.IdentifierRX), "game_id", "must have the format XX-1234")
	v.Check(validator.MinChars(g.Name, 3), "name", "must be at least 3 characters long")
	v.Check(validator.MinChars(g.Genre, 3), "genre", "must be at least 3 characters long")
	v.Check(validator.MinChars(g.Platform, 3), "platform", "must be at least 3 characters long")
	v.Check(!g.ReleaseDate.IsZero(), "release_date", "must be provided")
	v.Check(!g.ReleaseDate.After(now), "release_date", "must not be in the future")
	v.Check(validator.In(string(g.Rating), Ratings...), "rating", "not a recognized value")
	v.Check(validator.MinChars(g.Description, 20), "description", "must be at least 20 characters long")
}

// GameSchema is the field registry for the games catalog. description is
// searchable but, being long free text, not filterable.
var GameSchema = &Schema[Game]{
	Resource: "game",
	Plural:   "games",
	Table:    "games",
	Key:      "game_id",
	Fields: []Field[Game]{
		{Name: "game_id", Kind: KindText, Filterable: true, Searchable: true, Value: func(g Game) any { return g.GameID }},
		{Name: "name", Kind: KindText, Filterable: true, Searchable: true, Value: func(g Game) any { return g.Name }},
		{Name: "genre", Kind: KindText, Filterable: true, Searchable: true, Value: func(g Game) any { return g.Genre }},
		{Name: "platform", Kind: KindText, Filterable: true, Searchable: true, Value: func(g Game) any { return g.Platform }},
		{Name: "release_date", Kind: KindTime, Filterable: true, Value: func(g Game) any { return g.ReleaseDate.UTC() }},
		{Name: "rating", Kind: KindEnum, Values: Ratings, Filterable: true, Searchable: true, Value: func(g Game) any { return string(g.Rating) }},
		{Name: "description", Kind: KindText, Searchable: true, Value: func(g Game) any { return g.Description }},
	},
	CreateTable: `
		CREATE TABLE IF NOT EXISTS games (
			game_id      text PRIMARY KEY,
			name         text NOT NULL,
			genre        text NOT NULL,
			platform     text NOT NULL,
			release_date timestamptz NOT NULL,
			rating       text NOT NULL CHECK (rating IN ('PEGI 3', 'PEGI 7', 'PEGI 12', 'PEGI 16', 'PEGI 18')),
			description  text NOT NULL
		)`,
}
