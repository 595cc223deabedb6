package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chrissnell/solarvoyage/internal/estimator"
	"github.com/jackc/pgtype"
	"gorm.io/gorm"
)

// EstimateRunRecord stores a completed journey estimate. Run metadata lives
// in columns for listing and filtering; the request and sample series are
// kept whole as JSONB so a persisted run reconstructs exactly.
type EstimateRunRecord struct {
	gorm.Model

	RunID            string       `gorm:"uniqueIndex;not null"`
	StartTime        time.Time    `gorm:"index;not null"`
	EndTime          time.Time    `gorm:"not null"`
	DistanceKm       float64      `gorm:"not null"`
	TotalKWH         float64      `gorm:"not null"`
	CloudAttenuation bool         `gorm:"not null"`
	SampleCount      int          `gorm:"not null"`
	Request          pgtype.JSONB `gorm:"type:jsonb;default:'{}';not null"`
	Samples          pgtype.JSONB `gorm:"type:jsonb;default:'[]';not null"`
}

func (EstimateRunRecord) TableName() string {
	return "estimate_runs"
}

// RunSummary is the listing view of a persisted run, without the series
type RunSummary struct {
	RunID            string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	DistanceKm       float64   `json:"distance_km"`
	TotalKWH         float64   `json:"total_kwh"`
	CloudAttenuation bool      `json:"cloud_attenuation"`
	SampleCount      int       `json:"sample_count"`
}

// CreateTables creates or migrates the run-history schema
func (c *Client) CreateTables() error {
	if err := c.DB.AutoMigrate(EstimateRunRecord{}); err != nil {
		return fmt.Errorf("error creating or migrating estimate runs table: %v", err)
	}
	return nil
}

// SaveJourney persists a completed journey
func (c *Client) SaveJourney(j *estimator.Journey) error {
	requestJSON, err := json.Marshal(j.Request)
	if err != nil {
		return fmt.Errorf("could not marshal estimate request to JSON: %v", err)
	}
	samplesJSON, err := json.Marshal(j.Samples)
	if err != nil {
		return fmt.Errorf("could not marshal journey samples to JSON: %v", err)
	}

	record := EstimateRunRecord{
		RunID:            j.ID,
		StartTime:        j.StartTime,
		EndTime:          j.EndTime,
		DistanceKm:       j.DistanceKm,
		TotalKWH:         j.TotalKWH,
		CloudAttenuation: j.Request.CloudAttenuation,
		SampleCount:      len(j.Samples),
	}
	record.Request.Set(requestJSON)
	record.Samples.Set(samplesJSON)

	if err := c.DB.Create(&record).Error; err != nil {
		return fmt.Errorf("error saving estimate run %s: %v", j.ID, err)
	}
	return nil
}

// ListRuns returns the most recent persisted runs, newest first
func (c *Client) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var records []EstimateRunRecord
	err := c.DB.
		Select("run_id", "created_at", "start_time", "end_time", "distance_km", "total_kwh", "cloud_attenuation", "sample_count").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error listing estimate runs: %v", err)
	}

	summaries := make([]RunSummary, len(records))
	for i, r := range records {
		summaries[i] = RunSummary{
			RunID:            r.RunID,
			CreatedAt:        r.CreatedAt,
			StartTime:        r.StartTime,
			EndTime:          r.EndTime,
			DistanceKm:       r.DistanceKm,
			TotalKWH:         r.TotalKWH,
			CloudAttenuation: r.CloudAttenuation,
			SampleCount:      r.SampleCount,
		}
	}
	return summaries, nil
}

// GetJourney reconstructs a persisted journey by run ID. Returns
// gorm.ErrRecordNotFound when no such run exists.
func (c *Client) GetJourney(runID string) (*estimator.Journey, error) {
	var record EstimateRunRecord
	if err := c.DB.Where("run_id = ?", runID).First(&record).Error; err != nil {
		return nil, err
	}

	journey := &estimator.Journey{
		ID:         record.RunID,
		StartTime:  record.StartTime,
		EndTime:    record.EndTime,
		DistanceKm: record.DistanceKm,
		TotalKWH:   record.TotalKWH,
	}

	var requestJSON, samplesJSON []byte
	if err := record.Request.AssignTo(&requestJSON); err != nil {
		return nil, fmt.Errorf("error reading stored request for run %s: %v", runID, err)
	}
	if err := record.Samples.AssignTo(&samplesJSON); err != nil {
		return nil, fmt.Errorf("error reading stored samples for run %s: %v", runID, err)
	}

	if err := json.Unmarshal(requestJSON, &journey.Request); err != nil {
		return nil, fmt.Errorf("error decoding stored request for run %s: %v", runID, err)
	}
	if err := json.Unmarshal(samplesJSON, &journey.Samples); err != nil {
		return nil, fmt.Errorf("error decoding stored samples for run %s: %v", runID, err)
	}
	journey.Days = estimator.DailyBreakdown(journey.Samples)

	return journey, nil
}
