package model

import "time"

// Exception is an engine error persisted for auditing: failed or crashed
// signal executions and position updates that raised an error event.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Where the error happened
	Service string `gorm:"size:100;index" json:"service"` // e.g. "signalengine"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "position_manager"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "UpdatePositions"

	Symbol     string `gorm:"size:50;index" json:"symbol,omitempty"`
	PositionID string `gorm:"size:64" json:"position_id,omitempty"`

	Message string `gorm:"type:text" json:"message"`
	Level   string `gorm:"size:20;index" json:"level"` // warn | error

	// Extra context stored as JSON text
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
