package dto

import "github.com/noah-isme/oratoria-api/internal/models"

// ExportRequest is the body of POST /exports.
type ExportRequest struct {
	Format    models.ExportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
	Period    string              `json:"period" validate:"omitempty,oneof=7d 30d 6m 1y custom"`
	Start     string              `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End       string              `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Emotion   string              `json:"emotion" validate:"omitempty,oneof=nerviosa ansiosa neutra confiada motivada entusiasta"`
	Favorites bool                `json:"favorites"`
	// UserID selects a coached speaker; empty means the caller.
	UserID string `json:"userId"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
