package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"ckd-screening-server/internal/middleware"
	"ckd-screening-server/internal/pipeline"
	"ckd-screening-server/internal/schema"
	"ckd-screening-server/internal/store"
	"ckd-screening-server/internal/utils"
)

// ScreeningHandler handles prediction and history requests.
type ScreeningHandler struct {
	Pipeline *pipeline.Pipeline
	Store    *store.ScreeningStore
}

// NewScreeningHandler creates a new ScreeningHandler.
func NewScreeningHandler(p *pipeline.Pipeline, s *store.ScreeningStore) *ScreeningHandler {
	return &ScreeningHandler{Pipeline: p, Store: s}
}

// FieldDescriptor describes one intake form field for clients.
type FieldDescriptor struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Unit    string    `json:"unit,omitempty"`
	Kind    string    `json:"kind"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Step    float64   `json:"step,omitempty"`
	Default float64   `json:"default"`
	Allowed []float64 `json:"allowed,omitempty"`
}

// GetSchema returns the intake form field descriptors for the model the
// server is running.
func (h *ScreeningHandler) GetSchema(c *gin.Context) {
	s := h.Pipeline.Schema()
	fields := s.Fields()
	out := make([]FieldDescriptor, len(fields))
	for i, f := range fields {
		out[i] = FieldDescriptor{
			Name:    f.Name,
			Label:   f.Label,
			Unit:    f.Unit,
			Kind:    kindName(f.Kind),
			Min:     f.Min,
			Max:     f.Max,
			Step:    f.Step,
			Default: f.Default,
			Allowed: f.Allowed,
		}
	}
	utils.Success(c, "Schema fetched successfully", gin.H{
		"schema": s.Name,
		"fields": out,
	})
}

func kindName(k schema.FieldKind) string {
	switch k {
	case schema.Ordinal:
		return "ordinal"
	case schema.Binary:
		return "binary"
	case schema.Enum:
		return "enum"
	default:
		return "continuous"
	}
}

// PredictionResponse is the rendered outcome of one screening, built from
// the persisted row.
type PredictionResponse struct {
	ID         uint    `json:"id"`
	Result     string  `json:"result"`
	ProbCKD    float64 `json:"prob_ckd"`
	ProbNormal float64 `json:"prob_normal"`
}

// Predict runs the screening pipeline for the authenticated user. The body
// is a flat object of raw field values; both strings and numbers are
// accepted, matching what HTML forms and JSON clients naturally send.
func (h *ScreeningHandler) Predict(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	row, perr := h.Pipeline.Run(userID, rawStrings(body))
	if perr != nil {
		switch perr.Kind {
		case pipeline.KindValidation:
			utils.BadRequest(c, perr.Err.Error())
		case pipeline.KindInference:
			utils.BadGateway(c, "Prediction failed: "+perr.Err.Error())
		default:
			utils.InternalServerError(c, "Failed to store prediction: "+perr.Err.Error())
		}
		return
	}

	utils.Success(c, "Prediction completed", PredictionResponse{
		ID:         row.ID,
		Result:     row.Prediction,
		ProbCKD:    row.ProbCKD,
		ProbNormal: row.ProbNormal,
	})
}

// rawStrings flattens a decoded JSON object into the textual form the
// assembler consumes.
func rawStrings(body map[string]interface{}) map[string]string {
	raw := make(map[string]string, len(body))
	for k, v := range body {
		switch t := v.(type) {
		case string:
			raw[k] = t
		case float64:
			raw[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			if t {
				raw[k] = "1"
			} else {
				raw[k] = "0"
			}
		}
	}
	return raw
}

// GetLatest returns the most recent screening for the authenticated user.
func (h *ScreeningHandler) GetLatest(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	row, err := h.Store.Latest(userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if row == nil {
		utils.NotFound(c, "No test history available")
		return
	}

	utils.Success(c, "Latest screening fetched successfully", row)
}

// GetHistory returns all screenings for the authenticated user, newest
// first.
func (h *ScreeningHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	rows, err := h.Store.History(userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.Success(c, "History fetched successfully", rows)
}

// ExportHistory streams the authenticated user's screening history as an
// xlsx workbook.
func (h *ScreeningHandler) ExportHistory(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	rows, err := h.Store.History(userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Screenings"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"ID", "Date", "Prediction", "Prob CKD (%)", "Prob Normal (%)",
		"Age", "Blood Pressure", "Specific Gravity", "Albumin", "Sugar",
		"Red Blood Cells", "Pus Cell", "Blood Glucose Random", "Blood Urea",
		"Serum Creatinine", "Haemoglobin", "Packed Cell Volume",
		"Red Blood Cell Count", "Hypertension", "Diabetes Mellitus",
		"Model Version",
	}
	for i, hdr := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hdr)
	}

	for rowIdx, r := range rows {
		values := []interface{}{
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Prediction,
			r.ProbCKD, r.ProbNormal,
			r.Age, r.BloodPressure, r.SpecificGravity, r.Albumin, r.Sugar,
			r.RedBloodCells, r.PusCell, r.BloodGlucoseRandom, r.BloodUrea,
			r.SerumCreatinine, r.Haemoglobin, r.PackedCellVolume,
			r.RedBloodCellCount, r.Hypertension, r.DiabetesMellitus,
			r.ModelVersion,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		utils.InternalServerError(c, "Failed to build export: "+err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=screenings-%s.xlsx", userID))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
