package models

// DirectoryStats is the aggregate snapshot shown on the admin dashboard.
type DirectoryStats struct {
	TotalTools           int            `json:"totalTools" db:"total_tools"`
	PendingSubmissions   int            `json:"pendingSubmissions" db:"pending_submissions"`
	ApprovedTools        int            `json:"approvedTools" db:"approved_tools"`
	Contributors         int            `json:"contributors" db:"contributors"`
	AvgRating            float64        `json:"avgRating" db:"avg_rating"`
	CategoryDistribution map[string]int `json:"categoryDistribution"`
}
