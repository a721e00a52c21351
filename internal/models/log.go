package models

import "time"

// Log is one diagnostic log entry emitted during a simulation run.
// Data is a JSON object with level, message, and optional metadata.
type Log struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Data      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (Log) TableName() string { return "logs" }
