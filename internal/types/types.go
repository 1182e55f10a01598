package types

import "time"

// ProgressRecord is the computed year-completion statistics for one calendar date.
type ProgressRecord struct {
	Year            int       `json:"year"`
	Today           time.Time `json:"today"`
	IncludeToday    bool      `json:"include_today"`
	DaysPassed      int       `json:"days_passed"`
	DaysRemaining   int       `json:"days_remaining"`
	TotalDays       int       `json:"total_days"`
	PercentComplete float64   `json:"percent_complete"`
	WeeksRemaining  int       `json:"weeks_remaining"`
	MonthsRemaining int       `json:"months_remaining"`
}

type AsideKind string

const (
	AsideNone  AsideKind = "NONE"
	AsideQuote AsideKind = "QUOTE"
	AsideJoke  AsideKind = "JOKE"
)

// Snippet is a short piece of text used as a post aside.
type Snippet struct {
	Kind        AsideKind `json:"kind"`
	Text        string    `json:"text"`
	Attribution string    `json:"attribution,omitempty"`
	Remote      bool      `json:"remote"`
}

// ComposedContent is what gets handed to a publisher.
type ComposedContent struct {
	ChartImage   []byte    `json:"-"`
	PostText     string    `json:"post_text"`
	Aside        AsideKind `json:"aside"`
	AsideRemote  bool      `json:"aside_remote"`
	AsideDropped bool      `json:"aside_dropped"`
	Truncated    bool      `json:"truncated"`
	TextWeight   int       `json:"text_weight"`
}

type Account struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

type PostResult struct {
	Platform string `json:"platform"`
	ID       string `json:"id"`
	URL      string `json:"url"`
	TextOnly bool   `json:"text_only"`
}

// RunResult summarizes one pipeline invocation.
type RunResult struct {
	RunID    string          `json:"run_id"`
	Record   ProgressRecord  `json:"record"`
	Content  ComposedContent `json:"content"`
	Account  Account         `json:"account"`
	Post     PostResult      `json:"post"`
	Duration time.Duration   `json:"duration"`
}
