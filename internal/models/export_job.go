package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
	// ExportStatusExpired marks a finished job whose file was cleaned up.
	ExportStatusExpired ExportStatus = "EXPIRED"
)

// Terminal reports whether no further transitions are expected.
func (s ExportStatus) Terminal() bool {
	return s == ExportStatusFinished || s == ExportStatusFailed || s == ExportStatusExpired
}

// ExportJob is a persisted history export request.
type ExportJob struct {
	ID           string          `db:"id" json:"id"`
	Format       ExportFormat    `db:"format" json:"format"`
	Params       ExportJobParams `db:"params" json:"params"`
	Status       ExportStatus    `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}

// ExportJobParams stores the request options as JSONB. The bearer token is
// kept in memory only and never persisted.
type ExportJobParams struct {
	UserID      string     `json:"userId"`
	Period      string     `json:"period,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Emotion     string     `json:"emotion,omitempty"`
	Favorites   bool       `json:"favorites,omitempty"`
	AccessToken string     `json:"-"`
}

// Value marshals params to JSON for persistence.
func (p ExportJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ExportJobParams) Scan(value interface{}) error {
	data, err := jsonBytes(value, "ExportJobParams")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*p = ExportJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal export job params: %w", err)
	}
	return nil
}

// Favorite marks a presentation the user wants to keep at hand.
type Favorite struct {
	UserID         string    `db:"user_id" json:"user_id"`
	PresentationID string    `db:"presentation_id" json:"presentation_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
