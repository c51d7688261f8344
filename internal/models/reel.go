package models

import "time"

// Reel links a submitted tool to a short-form video URL. Rows are written
// best-effort at intake; the referenced tool may be deleted independently.
type Reel struct {
	ID        string    `json:"id" db:"id"`
	ToolID    string    `json:"toolId" db:"tool_id"`
	ToolName  string    `json:"toolName" db:"tool_name"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
