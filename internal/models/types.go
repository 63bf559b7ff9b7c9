package models

// Kind represents the kind of tracked media
type Kind string

const (
	KindShow  Kind = "show"
	KindMovie Kind = "movie"
	KindManga Kind = "manga"
	KindBook  Kind = "book"
)

// ValidKind reports whether k is one of the four media kinds
func ValidKind(k Kind) bool {
	switch k {
	case KindShow, KindMovie, KindManga, KindBook:
		return true
	}
	return false
}

// Status represents the user-assigned consumption state of an entity
type Status string

const (
	StatusWatching    Status = "watching"
	StatusCompleted   Status = "completed"
	StatusPlanToWatch Status = "plan_to_watch"
	StatusOnHold      Status = "on_hold"
	StatusDropped     Status = "dropped"
)

// ValidStatus reports whether s is one of the five consumption states
func ValidStatus(s Status) bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusPlanToWatch, StatusOnHold, StatusDropped:
		return true
	}
	return false
}

// ToggledCompleted returns the status after the completed flip:
// completed moves back to plan_to_watch, everything else moves to completed.
func ToggledCompleted(s Status) Status {
	if s == StatusCompleted {
		return StatusPlanToWatch
	}
	return StatusCompleted
}

// ToggledWatching returns the status after the watching flip:
// watching moves back to plan_to_watch, everything else moves to watching.
func ToggledWatching(s Status) Status {
	if s == StatusWatching {
		return StatusPlanToWatch
	}
	return StatusWatching
}

// DateField identifies a cached release date field on an entity
type DateField string

const (
	DateFieldNextAir DateField = "next_air_date" // shows
	DateFieldRelease DateField = "release_date"  // movies
)
