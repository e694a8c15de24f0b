package store

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ckd-screening-server/internal/models"
	"ckd-screening-server/internal/schema"
)

// ScreeningStore persists prediction rows and answers per-user history
// queries. Rows are append-only: nothing updates or deletes them after
// the insert.
type ScreeningStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewScreeningStore creates a new screening store.
func NewScreeningStore(db *gorm.DB, logger *zap.Logger) *ScreeningStore {
	return &ScreeningStore{db: db, logger: logger}
}

// Save inserts one prediction row with the feature values denormalized at
// prediction time. The auto-increment ID assigned by the insert is the
// ordering used by Latest.
func (s *ScreeningStore) Save(userID string, rec *schema.Record, prediction string, probCKD, probNormal float64, modelVersion string) (*models.ScreeningResult, error) {
	row := rowFromRecord(userID, rec)
	row.Prediction = prediction
	row.ProbCKD = probCKD
	row.ProbNormal = probNormal
	row.SchemaName = rec.Schema().Name
	row.ModelVersion = modelVersion

	if err := s.db.Create(row).Error; err != nil {
		s.logger.Error("insert screening result failed",
			zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return row, nil
}

// Latest returns the most recently inserted row for a user, or nil when
// the user has no screening history. Recency is by row ID, not by
// timestamp.
func (s *ScreeningStore) Latest(userID string) (*models.ScreeningResult, error) {
	var row models.ScreeningResult
	err := s.db.Where("user_id = ?", userID).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// History returns all rows for a user, newest first.
func (s *ScreeningStore) History(userID string) ([]models.ScreeningResult, error) {
	var rows []models.ScreeningResult
	if err := s.db.Where("user_id = ?", userID).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func rowFromRecord(userID string, rec *schema.Record) *models.ScreeningResult {
	f := func(name string) float64 {
		v, _ := rec.Value(name)
		return v
	}
	i := func(name string) int {
		v, _ := rec.Value(name)
		return int(v)
	}
	return &models.ScreeningResult{
		UserID:             userID,
		Age:                f("age"),
		BloodPressure:      f("blood_pressure"),
		SpecificGravity:    f("specific_gravity"),
		Albumin:            f("albumin"),
		Sugar:              f("sugar"),
		RedBloodCells:      i("red_blood_cells"),
		PusCell:            i("pus_cell"),
		BloodGlucoseRandom: f("blood_glucose_random"),
		BloodUrea:          f("blood_urea"),
		SerumCreatinine:    f("serum_creatinine"),
		Haemoglobin:        f("haemoglobin"),
		PackedCellVolume:   f("packed_cell_volume"),
		RedBloodCellCount:  f("red_blood_cell_count"),
		Hypertension:       i("hypertension"),
		DiabetesMellitus:   i("diabetes_mellitus"),
	}
}
