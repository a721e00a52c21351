package models

import "time"

// Action is one immutable log row recorded for an agent operation.
// Request and Result hold the wire-format JSON exactly as the server
// stored it: Request wraps the action parameters, Result carries the
// execution outcome ({"is_error": ..., "content": ...}).
type Action struct {
	ID        string    `gorm:"primaryKey;size:64"`
	AgentID   string    `gorm:"size:64;index"`
	Request   string    `gorm:"type:text"`
	Result    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (Action) TableName() string { return "actions" }
