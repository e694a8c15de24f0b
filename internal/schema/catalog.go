package schema

// Field catalog shared by both schema versions. Bounds and defaults follow
// the ranges the intake form offers; assembly only enforces the categorical
// domains, continuous fields accept any numeric value.

var specificGravityValues = []float64{1.005, 1.010, 1.015, 1.020, 1.025}

var catalog = map[string]Field{
	"age":                     {Name: "age", Label: "Age", Unit: "years", Kind: Continuous, Min: 2, Max: 100, Step: 1, Default: 50},
	"blood_pressure":          {Name: "blood_pressure", Label: "Blood Pressure", Unit: "mmHg", Kind: Continuous, Min: 50, Max: 180, Step: 1, Default: 80},
	"specific_gravity":        {Name: "specific_gravity", Label: "Specific Gravity", Kind: Enum, Allowed: specificGravityValues, Default: 1.020},
	"albumin":                 {Name: "albumin", Label: "Albumin", Kind: Ordinal, Min: 0, Max: 5, Step: 1},
	"sugar":                   {Name: "sugar", Label: "Sugar", Kind: Ordinal, Min: 0, Max: 5, Step: 1},
	"red_blood_cells":         {Name: "red_blood_cells", Label: "RBC (0=Normal, 1=Abnormal)", Kind: Binary, Max: 1, Step: 1},
	"pus_cell":                {Name: "pus_cell", Label: "Pus Cell (0=Normal, 1=Abnormal)", Kind: Binary, Max: 1, Step: 1},
	"pus_cell_clumps":         {Name: "pus_cell_clumps", Label: "Pus Cell Clumps", Kind: Binary, Max: 1, Step: 1},
	"bacteria":                {Name: "bacteria", Label: "Bacteria", Kind: Binary, Max: 1, Step: 1},
	"blood_glucose_random":    {Name: "blood_glucose_random", Label: "Blood Glucose Random", Unit: "mg/dL", Kind: Continuous, Min: 50, Max: 500, Step: 1, Default: 100},
	"blood_urea":              {Name: "blood_urea", Label: "Blood Urea", Unit: "mg/dL", Kind: Continuous, Min: 10, Max: 300, Step: 1, Default: 30},
	"serum_creatinine":        {Name: "serum_creatinine", Label: "Serum Creatinine", Unit: "mg/dL", Kind: Continuous, Min: 0.4, Max: 20, Step: 0.1, Default: 1.0},
	"sodium":                  {Name: "sodium", Label: "Sodium", Unit: "mEq/L", Kind: Continuous, Min: 100, Max: 200, Step: 1, Default: 140},
	"potassium":               {Name: "potassium", Label: "Potassium", Unit: "mEq/L", Kind: Continuous, Min: 2, Max: 8, Step: 0.1, Default: 4.5},
	"haemoglobin":             {Name: "haemoglobin", Label: "Hemoglobin", Unit: "g/dL", Kind: Continuous, Min: 3, Max: 18, Step: 0.1, Default: 12},
	"packed_cell_volume":      {Name: "packed_cell_volume", Label: "Packed Cell Volume", Unit: "%", Kind: Continuous, Min: 10, Max: 60, Step: 1, Default: 40},
	"white_blood_cell_count":  {Name: "white_blood_cell_count", Label: "WBC Count", Unit: "cells/cumm", Kind: Continuous, Min: 2000, Max: 20000, Step: 100, Default: 8000},
	"red_blood_cell_count":    {Name: "red_blood_cell_count", Label: "RBC Count", Unit: "millions/cmm", Kind: Continuous, Min: 2, Max: 8, Step: 0.1, Default: 5},
	"hypertension":            {Name: "hypertension", Label: "Hypertension", Kind: Binary, Max: 1, Step: 1},
	"diabetes_mellitus":       {Name: "diabetes_mellitus", Label: "Diabetes Mellitus", Kind: Binary, Max: 1, Step: 1},
	"coronary_artery_disease": {Name: "coronary_artery_disease", Label: "Coronary Artery Disease", Kind: Binary, Max: 1, Step: 1},
	"appetite":                {Name: "appetite", Label: "Appetite (0=Good, 1=Poor)", Kind: Binary, Max: 1, Step: 1},
	"peda_edema":              {Name: "peda_edema", Label: "Pedal Edema", Kind: Binary, Max: 1, Step: 1},
	"aanemia":                 {Name: "aanemia", Label: "Anemia", Kind: Binary, Max: 1, Step: 1},
}

func fields(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		f, ok := catalog[n]
		if !ok {
			panic("unknown catalog field: " + n)
		}
		out[i] = f
	}
	return out
}

// CoreV1 is the 15-field schema the web intake form collects. Field order
// is the column order of the core model artifact.
var CoreV1 = newSchema("ckd-core-v1", fields(
	"age",
	"blood_pressure",
	"specific_gravity",
	"albumin",
	"sugar",
	"red_blood_cells",
	"pus_cell",
	"blood_glucose_random",
	"blood_urea",
	"serum_creatinine",
	"haemoglobin",
	"packed_cell_volume",
	"red_blood_cell_count",
	"hypertension",
	"diabetes_mellitus",
))

// ExtendedV1 is the 24-field schema the interactive dashboard collects.
// It is a separate schema version, not an evolution of CoreV1: artifacts
// are trained against exactly one of the two.
var ExtendedV1 = newSchema("ckd-extended-v1", fields(
	"age",
	"blood_pressure",
	"specific_gravity",
	"albumin",
	"sugar",
	"red_blood_cells",
	"pus_cell",
	"pus_cell_clumps",
	"bacteria",
	"blood_glucose_random",
	"blood_urea",
	"serum_creatinine",
	"sodium",
	"potassium",
	"haemoglobin",
	"packed_cell_volume",
	"white_blood_cell_count",
	"red_blood_cell_count",
	"hypertension",
	"diabetes_mellitus",
	"coronary_artery_disease",
	"appetite",
	"peda_edema",
	"aanemia",
))

// ByName resolves a schema version by its registered name.
func ByName(name string) (*Schema, bool) {
	switch name {
	case CoreV1.Name:
		return CoreV1, true
	case ExtendedV1.Name:
		return ExtendedV1, true
	}
	return nil, false
}
