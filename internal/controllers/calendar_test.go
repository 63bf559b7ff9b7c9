package controllers

import (
	"reflect"
	"testing"

	"github.com/tracknarr/tracknarr/internal/models"
)

func strPtr(s string) *string { return &s }

func calendarFixture() []*models.Entity {
	return []*models.Entity{
		{Key: "show:1", ID: "1", Kind: models.KindShow, Title: "Watching Show", Status: models.StatusWatching, NextAirDate: strPtr("2024-05-01")},
		{Key: "show:2", ID: "2", Kind: models.KindShow, Title: "Completed Show", Status: models.StatusCompleted, NextAirDate: strPtr("2024-05-01")},
		{Key: "show:3", ID: "3", Kind: models.KindShow, Title: "Dropped Show", Status: models.StatusDropped, NextAirDate: strPtr("2024-05-01")},
		{Key: "show:4", ID: "4", Kind: models.KindShow, Title: "No Date Show", Status: models.StatusWatching},
		{Key: "movie:5", ID: "5", Kind: models.KindMovie, Title: "Planned Movie", Status: models.StatusPlanToWatch, ReleaseDate: strPtr("2024-05-01")},
		{Key: "movie:6", ID: "6", Kind: models.KindMovie, Title: "Watching Movie", Status: models.StatusWatching, ReleaseDate: strPtr("2024-05-02")},
		{Key: "movie:7", ID: "7", Kind: models.KindMovie, Title: "Later Movie", Status: models.StatusPlanToWatch, ReleaseDate: strPtr("2024-06-10")},
		{Key: "manga:8", ID: "8", Kind: models.KindManga, Title: "A Manga", Status: models.StatusPlanToWatch},
	}
}

func TestBuildCalendarGrouping(t *testing.T) {
	calendar := BuildCalendar(calendarFixture())

	mayFirst := calendar.Days["2024-05-01"]
	if len(mayFirst) != 3 {
		t.Fatalf("Expected 3 items on 2024-05-01, got %d", len(mayFirst))
	}

	// Insertion order of the snapshot is preserved within a day
	if mayFirst[0].ID != "1" || mayFirst[1].ID != "2" || mayFirst[2].ID != "5" {
		t.Errorf("Unexpected item order: %v, %v, %v", mayFirst[0].ID, mayFirst[1].ID, mayFirst[2].ID)
	}

	// Dropped show, date-less show, non-planned movie and manga are excluded
	if _, ok := calendar.Days["2024-05-02"]; ok {
		t.Error("Movie with status watching must not appear on the calendar")
	}
	for _, items := range calendar.Days {
		for _, item := range items {
			if item.ID == "3" || item.ID == "4" || item.ID == "8" {
				t.Errorf("Entity %s must not appear on the calendar", item.ID)
			}
		}
	}

	if calendar.Total() != 4 {
		t.Errorf("Expected 4 calendar items in total, got %d", calendar.Total())
	}
}

func TestBuildCalendarMarks(t *testing.T) {
	calendar := BuildCalendar(calendarFixture())

	marks := calendar.Marks["2024-05-01"]
	if len(marks) != 2 {
		t.Fatalf("Expected both kinds marked on 2024-05-01, got %v", marks)
	}

	marks = calendar.Marks["2024-06-10"]
	if len(marks) != 1 || marks[0] != models.KindMovie {
		t.Errorf("Expected only movie mark on 2024-06-10, got %v", marks)
	}
}

func TestBuildCalendarPure(t *testing.T) {
	snapshot := calendarFixture()

	first := BuildCalendar(snapshot)
	second := BuildCalendar(snapshot)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical output for an unchanged snapshot")
	}
}

func TestCalendarWindow(t *testing.T) {
	calendar := BuildCalendar(calendarFixture())

	windowed := calendar.Window("2024-05-01", "2024-06-01")
	if _, ok := windowed.Days["2024-05-01"]; !ok {
		t.Error("Expected 2024-05-01 inside the window")
	}
	if _, ok := windowed.Days["2024-06-10"]; ok {
		t.Error("Expected 2024-06-10 outside the window")
	}
	if windowed.Total() != 3 {
		t.Errorf("Expected 3 items in window, got %d", windowed.Total())
	}

	// Windowing must not disturb the original
	if calendar.Total() != 4 {
		t.Errorf("Window mutated the source calendar, total = %d", calendar.Total())
	}
}
