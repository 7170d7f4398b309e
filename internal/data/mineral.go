// Package data provides the catalog entities, their schemas, the generic
// query pipeline and the stores that persist them.
package data

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aoideee/catalogs/internal/validator"
)

// Rarity classifies how often a mineral is found.
type Rarity string

const (
	RarityCommon        Rarity = "COMMON"
	RarityUncommon      Rarity = "UNCOMMON"
	RarityRare          Rarity = "RARE"
	RarityExtremelyRare Rarity = "EXTREMELY_RARE"
)

// Rarities lists every recognized Rarity literal.
var Rarities = []string{
	string(RarityCommon),
	string(RarityUncommon),
	string(RarityRare),
	string(RarityExtremelyRare),
}

var (
	letterRX = regexp.MustCompile(`[A-Za-z]`)
	digitRX  = regexp.MustCompile(`\d`)
)

// Mineral is a single specimen entry, stored in the "minerals" table.
type Mineral struct {
	CatalogID       string  `json:"catalog_id" db:"catalog_id"`
	Name            string  `json:"name" db:"name"`
	ChemicalFormula string  `json:"chemical_formula" db:"chemical_formula"`
	Hardness        float64 `json:"hardness" db:"hardness"`
	WeightCarats    float64 `json:"weight_carats" db:"weight_carats"`
	Rarity          Rarity  `json:"rarity" db:"rarity"`
	OriginCountry   string  `json:"origin_country" db:"origin_country"`
	SpecimensCount  int     `json:"specimens_count" db:"specimens_count"`
}

func (m Mineral) Identifier() string { return m.CatalogID }

func (m Mineral) Normalized() Mineral {
	m.Name = strings.TrimSpace(m.Name)
	m.ChemicalFormula = strings.TrimSpace(m.ChemicalFormula)
	m.OriginCountry = strings.TrimSpace(m.OriginCountry)
	return m
}

func (m Mineral) Validate(v *validator.Validator, _ time.Time) {
	v.Check(validator.Matches(m.CatalogID, validator.IdentifierRX), "catalog_id", "must have the format XX-1234")
	v.Check(validator.MinChars(m.Name, 3), "name", "must be at least 3 characters long")
	v.Check(letterRX.MatchString(m.ChemicalFormula) && digitRX.MatchString(m.ChemicalFormula), "chemical_formula", "must contain letters and digits")
	v.Check(m.Hardness >= 1.0 && m.Hardness <= 10.0, "hardness", "must be between 1.0 and 10.0")
	v.Check(m.WeightCarats > 0, "weight_carats", "must be greater than zero")
	v.Check(validator.In(string(m.Rarity), Rarities...), "rarity", "not a recognized value")
	v.Check(validator.MinChars(m.OriginCountry, 2), "origin_country", "must be at least 2 characters long")
	v.Check(m.SpecimensCount >= 0, "specimens_count", "must not be negative")
}

// Summary is the fixed-order multi-line text encoded into a mineral's QR code.
func (m Mineral) Summary() string {
	return fmt.Sprintf(
		"Catalog ID: %s\nName: %s\nChemical Formula: %s\nHardness: %s\nWeight (carats): %s\nRarity: %s\nOrigin Country: %s\nSpecimens Count: %d",
		m.CatalogID,
		m.Name,
		m.ChemicalFormula,
		textOf(m.Hardness),
		textOf(m.WeightCarats),
		m.Rarity,
		m.OriginCountry,
		m.SpecimensCount,
	)
}

// MineralSchema is the field registry for the minerals catalog.
var MineralSchema = &Schema[Mineral]{
	Resource: "mineral",
	Plural:   "minerals",
	Table:    "minerals",
	Key:      "catalog_id",
	Fields: []Field[Mineral]{
		{Name: "catalog_id", Kind: KindText, Filterable: true, Searchable: true, Value: func(m Mineral) any { return m.CatalogID }},
		{Name: "name", Kind: KindText, Filterable: true, Searchable: true, Value: func(m Mineral) any { return m.Name }},
		{Name: "chemical_formula", Kind: KindText, Filterable: true, Searchable: true, Value: func(m Mineral) any { return m.ChemicalFormula }},
		{Name: "hardness", Kind: KindFloat, Filterable: true, Searchable: true, Value: func(m Mineral) any { return m.Hardness }},
		{Name: "weight_carats", Kind: KindFloat, Filterable: true, Searchable: true, Value: func(m Mineral) any { return m.WeightCarats }},
		{Name: "rarity", Kind: KindEnum, Values: Rarities, Filterable: true, Searchable: true, Value: func(m Mineral) any { return string(m.Rarity) }},
		{Name: "origin_country", Kind: KindText, Filterable: true, Searchable: true, Value: func(m Mineral) any { return m.OriginCountry }},
		{Name: "specimens_count", Kind: KindInt, Filterable: true, Searchable: true, Value: func(m Mineral) any { return m.SpecimensCount }},
	},
	CreateTable: `
		CREATE TABLE IF NOT EXISTS minerals (
			catalog_id       text PRIMARY KEY,
			name             text NOT NULL,
			chemical_formula text NOT NULL,
			hardness         double precision NOT NULL CHECK (hardness BETWEEN 1.0 AND 10.0),
			weight_carats    double precision NOT NULL CHECK (weight_carats > 0),
			rarity           text NOT NULL CHECK (rarity IN ('COMMON', 'UNCOMMON', 'RARE', 'EXTREMELY_RARE')),
			origin_country   text NOT NULL,
			specimens_count  integer NOT NULL CHECK (specimens_count >= 0)
		)`,
}
