// Package pagination bounds list queries.
package pagination

import "gorm.io/gorm"

// LimitRequest holds the optional ?limit= query parameter. Nil means the
// parameter was absent.
type LimitRequest struct {
	Limit *int `form:"limit" binding:"omitempty"`
}

// Window is a default and maximum page size for one list endpoint.
type Window struct {
	Default int
	Max     int
}

// Common windows.
var (
	EntriesWindow = Window{Default: 50, Max: 200}
	SavingsWindow = Window{Default: 200, Max: 200}
	ScheduleCap   = Window{Default: 500, Max: 500}
)

// Clamp returns the default when requested is nil, otherwise requested
// bounded to [1, w.Max].
func (w Window) Clamp(requested *int) int {
	if requested == nil {
		return w.Default
	}
	n := *requested
	if n < 1 {
		return 1
	}
	if n > w.Max {
		return w.Max
	}
	return n
}

// Take returns a GORM scope applying the clamped LIMIT.
func (w Window) Take(requested *int) func(db *gorm.DB) *gorm.DB {
	n := w.Clamp(requested)
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}
