package controllers

import (
	"github.com/tracknarr/tracknarr/internal/models"
)

// CalendarItem is one calendar row: enough to render a line for the day.
// Season/episode numbers are deliberately absent; deriving them would need
// an extra detail fetch per show.
type CalendarItem struct {
	Key       string      `json:"key"`
	ID        string      `json:"id"`
	Kind      models.Kind `json:"kind"`
	Title     string      `json:"title"`
	PosterURL *string     `json:"poster_url,omitempty"`
	Date      string      `json:"date"` // YYYY-MM-DD
}

// Calendar maps ISO dates to the items releasing that day. Items keep the
// order of the snapshot they were derived from. Marks lists the kinds
// present on a day (a day with a show and a movie carries both).
type Calendar struct {
	Days  map[string][]CalendarItem `json:"days"`
	Marks map[string][]models.Kind  `json:"marks"`
}

// calendarDate returns the date under which an entity appears on the
// calendar, or nil if it does not appear at all. Shows are relevant while
// plan_to_watch, watching or completed; movies only while plan_to_watch.
func calendarDate(entity *models.Entity) *string {
	switch entity.Kind {
	case models.KindShow:
		switch entity.Status {
		case models.StatusPlanToWatch, models.StatusWatching, models.StatusCompleted:
			return entity.NextAirDate
		}
	case models.KindMovie:
		if entity.Status == models.StatusPlanToWatch {
			return entity.ReleaseDate
		}
	}
	return nil
}

// BuildCalendar derives the calendar purely from a store snapshot. Calling
// it twice on the same snapshot yields the same result; it performs no I/O
// and keeps no state between calls.
func BuildCalendar(entities []*models.Entity) *Calendar {
	calendar := &Calendar{
		Days:  make(map[string][]CalendarItem),
		Marks: make(map[string][]models.Kind),
	}

	for _, entity := range entities {
		date := calendarDate(entity)
		if date == nil {
			continue
		}

		calendar.Days[*date] = append(calendar.Days[*date], CalendarItem{
			Key:       entity.Key,
			ID:        entity.ID,
			Kind:      entity.Kind,
			Title:     entity.Title,
			PosterURL: entity.PosterURL,
			Date:      *date,
		})
	}

	for date, items := range calendar.Days {
		hasShow, hasMovie := false, false
		for _, item := range items {
			switch item.Kind {
			case models.KindShow:
				hasShow = true
			case models.KindMovie:
				hasMovie = true
			}
		}
		if hasShow {
			calendar.Marks[date] = append(calendar.Marks[date], models.KindShow)
		}
		if hasMovie {
			calendar.Marks[date] = append(calendar.Marks[date], models.KindMovie)
		}
	}

	return calendar
}

// Window returns a copy of the calendar restricted to dates in [from, to).
// ISO dates compare lexicographically, so plain string comparison is enough.
func (c *Calendar) Window(from, to string) *Calendar {
	windowed := &Calendar{
		Days:  make(map[string][]CalendarItem),
		Marks: make(map[string][]models.Kind),
	}

	for date, items := range c.Days {
		if date < from || date >= to {
			continue
		}
		windowed.Days[date] = items
		windowed.Marks[date] = c.Marks[date]
	}

	return windowed
}

// Total returns the number of items across all days
func (c *Calendar) Total() int {
	total := 0
	for _, items := range c.Days {
		total += len(items)
	}
	return total
}
