package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wudi/fraudguard/session"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the inline notification the dashboard shows: no retry
// machinery, just the message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type recordResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ForgeryScore   *float64 `json:"forgery_score"`
	SignatureScore *float64 `json:"signature_score"`

	AadhaarText   *string `json:"aadhaar_text"`
	AadhaarNumber *string `json:"aadhaar_number"`
	AadhaarValid  *bool   `json:"aadhaar_valid"`

	PANText   *string `json:"pan_text"`
	PANNumber *string `json:"pan_number"`
	PANValid  *bool   `json:"pan_valid"`

	FaceDistance *float64 `json:"face_distance"`
	FaceVerified *bool    `json:"face_verified"`

	FraudCount     *int     `json:"transaction_frauds_count"`
	FraudThreshold *float64 `json:"transaction_threshold"`
}

func toRecordResponse(rec session.Record) recordResponse {
	return recordResponse{
		ID:             rec.ID,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		ForgeryScore:   rec.ForgeryScore,
		SignatureScore: rec.SignatureScore,
		AadhaarText:    rec.AadhaarText,
		AadhaarNumber:  rec.AadhaarNumber,
		AadhaarValid:   rec.AadhaarValid,
		PANText:        rec.PANText,
		PANNumber:      rec.PANNumber,
		PANValid:       rec.PANValid,
		FaceDistance:   rec.FaceDistance,
		FaceVerified:   rec.FaceVerified,
		FraudCount:     rec.FraudCount,
		FraudThreshold: rec.FraudThreshold,
	}
}
