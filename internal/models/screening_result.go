package models

import (
	"time"
)

// ScreeningResult is one persisted prediction. Unlike the account tables it
// keeps an auto-increment primary key: "latest result for a user" is defined
// by insertion order, not by timestamp.
type ScreeningResult struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID string `gorm:"size:36;index;not null" json:"userId"`

	// Lab values as entered, denormalized at prediction time
	Age                float64 `json:"age"`
	BloodPressure      float64 `json:"blood_pressure"`
	SpecificGravity    float64 `json:"specific_gravity"`
	Albumin            float64 `json:"albumin"`
	Sugar              float64 `json:"sugar"`
	RedBloodCells      int     `json:"red_blood_cells"`
	PusCell            int     `json:"pus_cell"`
	BloodGlucoseRandom float64 `json:"blood_glucose_random"`
	BloodUrea          float64 `json:"blood_urea"`
	SerumCreatinine    float64 `json:"serum_creatinine"`
	Haemoglobin        float64 `json:"haemoglobin"`
	PackedCellVolume   float64 `json:"packed_cell_volume"`
	RedBloodCellCount  float64 `json:"red_blood_cell_count"`
	Hypertension       int     `json:"hypertension"`
	DiabetesMellitus   int     `json:"diabetes_mellitus"`

	// Derived fields
	Prediction   string  `gorm:"size:50" json:"prediction"`
	ProbCKD      float64 `gorm:"column:prob_ckd" json:"prob_ckd"`
	ProbNormal   float64 `json:"prob_normal"`
	SchemaName   string  `gorm:"size:50" json:"schemaName"`
	ModelVersion string  `gorm:"size:50" json:"modelVersion"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName keeps the historical table name
func (ScreeningResult) TableName() string {
	return "test_results"
}
