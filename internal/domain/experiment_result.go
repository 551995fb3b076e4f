package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ExperimentResult groups the expression records produced by one named
// experiment run. The identifier is caller-supplied and globally unique;
// assembly fields are the only mutable part after creation.
type ExperimentResult struct {
	ExperimentResultID string         `gorm:"column:experiment_result_id;primaryKey;size:255" json:"experiment_result_id" binding:"required"`
	AssemblyID         *string        `gorm:"column:assembly_id;size:255" json:"assembly_id,omitempty"`
	AssemblyName       *string        `gorm:"column:assembly_name;size:255" json:"assembly_name,omitempty"`
	ExtraProperties    datatypes.JSON `gorm:"column:extra_properties;type:jsonb" json:"extra_properties,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (ExperimentResult) TableName() string { return "experiment_results" }
