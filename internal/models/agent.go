package models

import "time"

// Agent is one registered simulation participant as stored by the
// marketplace server. Data holds the role-specific profile as JSON.
type Agent struct {
	ID        string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text"`
	CreatedAt time.Time
}

func (Agent) TableName() string { return "agents" }
