// Package core provides the ingestion pipeline for equipment parameter data.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"time"

	"github.com/google/uuid"
)

// FieldType represents the expected data type for an input column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// FieldSpec defines validation rules for a single input column.
type FieldSpec struct {
	Name string    // Column header name, matched case-insensitively
	Type FieldType // Expected data type
}

// Column names every equipment table must carry.
const (
	ColName        = "Equipment Name"
	ColType        = "Type"
	ColPressure    = "Pressure"
	ColTemperature = "Temperature"
	ColFlowrate    = "Flowrate"
)

// EquipmentSpecs lists the required columns in the order they are checked.
var EquipmentSpecs = []FieldSpec{
	{Name: ColName, Type: FieldText},
	{Name: ColType, Type: FieldText},
	{Name: ColPressure, Type: FieldNumeric},
	{Name: ColTemperature, Type: FieldNumeric},
	{Name: ColFlowrate, Type: FieldNumeric},
}

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// RawTable is an unvalidated table as read from a CSV or spreadsheet.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// EquipmentRecord is one validated row of input.
type EquipmentRecord struct {
	Name        string  `json:"Equipment Name"`
	Type        string  `json:"Type"`
	Pressure    float64 `json:"Pressure"`
	Temperature float64 `json:"Temperature"`
	Flowrate    float64 `json:"Flowrate"`
}

// Dataset is the ordered set of records produced by one ingestion.
type Dataset []EquipmentRecord

// CategoryCount is the number of records sharing one equipment type.
type CategoryCount struct {
	Category string `json:"type"`
	Count    int    `json:"count"`
}

// AggregateSummary holds the KPIs of a dataset. Numeric fields are nil when
// the dataset is empty.
type AggregateSummary struct {
	UnitCount      int             `json:"total_count"`
	AvgPressure    *float64        `json:"avg_pressure"`
	MaxTemperature *float64        `json:"max_temp"`
	AvgFlowrate    *float64        `json:"avg_flowrate"`
	Categories     []CategoryCount `json:"type_distribution"`
}

// Empty reports whether the summary was computed from zero records.
func (s AggregateSummary) Empty() bool {
	return s.UnitCount == 0
}

// View is the read-only snapshot handed to presentation.
type View struct {
	IngestionID uuid.UUID        `json:"ingestion_id"`
	Source      string           `json:"source"`
	IngestedAt  time.Time        `json:"ingested_at"`
	Summary     AggregateSummary `json:"summary"`
	Rows        Dataset          `json:"raw_data"`
}

// Loaded reports whether any dataset has been ingested.
func (v View) Loaded() bool {
	return v.IngestionID != uuid.Nil
}

// EfficiencyEntry ranks one record by its temperature to pressure ratio.
type EfficiencyEntry struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Ratio float64 `json:"ratio"`
}
