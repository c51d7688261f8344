package models

import (
	"encoding/json"
	"strings"
	"time"
)

type ToolStatus string

const (
	ToolStatusPending  ToolStatus = "pending"
	ToolStatusApproved ToolStatus = "approved"
	ToolStatusRejected ToolStatus = "rejected"
)

func IsValidStatus(status ToolStatus) bool {
	switch status {
	case ToolStatusPending, ToolStatusApproved, ToolStatusRejected:
		return true
	}
	return false
}

type PricingTier string

const (
	PricingFree     PricingTier = "Free"
	PricingFreemium PricingTier = "Freemium"
	PricingPro      PricingTier = "Pro"
)

// NormalizePricing maps free-form pricing input to a tier accepted by the
// store's CHECK constraint. Unrecognized input falls back to Free.
func NormalizePricing(raw string) PricingTier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "free":
		return PricingFree
	case "freemium":
		return PricingFreemium
	case "paid", "pro":
		return PricingPro
	}
	return PricingFree
}

type Tool struct {
	ID              string      `json:"id" db:"id"`
	Name            string      `json:"name" db:"tool_name"`
	Description     string      `json:"description" db:"tool_description"`
	URL             string      `json:"url" db:"tool_url"`
	Category        string      `json:"category" db:"tool_category"`
	Pricing         PricingTier `json:"pricing" db:"pricing_type"`
	Tags            []string    `json:"tags" db:"tool_tags"`
	ImageURL        string      `json:"image" db:"tool_image"`
	SubmitterName   string      `json:"submittedBy" db:"submitter_name"`
	SubmitterEmail  *string     `json:"submitterEmail,omitempty" db:"submitter_email"`
	Status          ToolStatus  `json:"status" db:"status"`
	RejectionReason *string     `json:"rejectionReason,omitempty" db:"rejection_reason"`
	Rating          int         `json:"rating" db:"rating"`
	Verified        bool        `json:"verified" db:"verified"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
	ApprovedAt      *time.Time  `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedAt      *time.Time  `json:"rejectedAt,omitempty" db:"rejected_at"`
}

// Approved is the legacy boolean clients still expect. It is derived from the
// status enum so the pair can never drift apart.
func (t Tool) Approved() bool {
	return t.Status == ToolStatusApproved
}

// MarshalJSON adds the derived approved flag at the serialization boundary
// and keeps tags a JSON array even when empty.
func (t Tool) MarshalJSON() ([]byte, error) {
	type alias Tool
	out := struct {
		alias
		Approved bool `json:"approved"`
	}{alias(t), t.Approved()}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return json.Marshal(out)
}
