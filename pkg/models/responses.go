// Package models holds the request and response shapes shared by the
// transport and service layers.
package models

// VerificationResponse reports the verdict plus every sub-signal
// computed during the request, so a false verdict is always explainable.
type VerificationResponse struct {
	RequestID       string   `json:"request_id"`
	Verdict         bool     `json:"match"`
	TypedID         string   `json:"typed_ic"`
	ExtractedID     *string  `json:"extracted_ic"`
	IdentifierMatch bool     `json:"text_match"`
	FaceMatch       bool     `json:"face_match"`
	FaceStrategy    string   `json:"face_strategy,omitempty"`
	FaceDistance    *float64 `json:"face_score,omitempty"`
	FaceConfidence  *float64 `json:"face_confidence,omitempty"`
	HolderName      string   `json:"holder_name,omitempty"`
	NameSimilarity  *float64 `json:"name_similarity,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	OCRTextSnippet  string   `json:"ocr_text_snippet"`
	ProcessingSec   float64  `json:"processing_time_sec"`
}

// ClassificationResponse reports the predicted document category
type ClassificationResponse struct {
	RequestID     string  `json:"request_id"`
	Label         string  `json:"label"`
	Confidence    float64 `json:"confidence"`
	TextSnippet   string  `json:"text_snippet"`
	ModelID       string  `json:"model_id,omitempty"`
	Cached        bool    `json:"cached,omitempty"`
	ProcessingSec float64 `json:"processing_time_sec"`
}

// ReloadResponse acknowledges a model hot-swap
type ReloadResponse struct {
	ModelID   string   `json:"model_id"`
	TrainedAt string   `json:"trained_at"`
	Labels    []string `json:"labels"`
}

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}
