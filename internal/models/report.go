package models

import "time"

type Category string

const (
	CategorySafety     Category = "Safety"
	CategoryHarassment Category = "Harassment"
	CategoryFacility   Category = "Facility Issue"
	CategorySuggestion Category = "Suggestion"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySafety, CategoryHarassment, CategoryFacility, CategorySuggestion:
		return true
	}
	return false
}

func Categories() []Category {
	return []Category{CategorySafety, CategoryHarassment, CategoryFacility, CategorySuggestion}
}

type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

type Sender string

const (
	SenderReporter Sender = "reporter"
	SenderAdmin    Sender = "admin"
)

type Message struct {
	Seq       int64     `json:"seq"`
	ReportID  string    `json:"reportId"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Evidence struct {
	ID          string    `json:"id"`
	ReportID    string    `json:"reportId"`
	ObjectKey   string    `json:"-"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Advisory is the latest compliance-check result for a report. It is
// replaced wholesale on every re-run, never merged.
type Advisory struct {
	Category      Category `json:"categoryAssessment"`
	CategoryMatch bool     `json:"categoryMatch"`
	Urgency       Urgency  `json:"urgencyAssessment"`
	UrgencyMatch  bool     `json:"urgencyMatch"`
	Match         bool     `json:"match"`
	LawCited      string   `json:"lawCited"` // "None" when no specific rule applies
	Reason        string   `json:"reason"`
}

type Report struct {
	ID          string     `json:"id"`
	AccessCode  string     `json:"accessCode"`
	Subject     string     `json:"subject,omitempty"`
	Category    Category   `json:"category"`
	Urgency     Urgency    `json:"urgency"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUpdated time.Time  `json:"lastUpdated"`
	Messages    []Message  `json:"messages,omitempty"`
	Evidence    []Evidence `json:"evidence,omitempty"`
	Advisory    *Advisory  `json:"advisory,omitempty"`
}
