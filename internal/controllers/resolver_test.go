package controllers

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/models"
)

// fakeProvider is a scriptable Provider that counts fetches per entity
type fakeProvider struct {
	mu         sync.Mutex
	showCalls  map[string]int
	movieCalls map[string]int
	showFn     func(id string) (*string, error)
	movieFn    func(id string) (*string, error)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		showCalls:  make(map[string]int),
		movieCalls: make(map[string]int),
		showFn:     func(string) (*string, error) { return nil, nil },
		movieFn:    func(string) (*string, error) { return nil, nil },
	}
}

func (p *fakeProvider) FetchShowMinimal(_ context.Context, id string) (*string, error) {
	p.mu.Lock()
	p.showCalls[id]++
	p.mu.Unlock()
	return p.showFn(id)
}

func (p *fakeProvider) FetchMovieMinimal(_ context.Context, id string) (*string, error) {
	p.mu.Lock()
	p.movieCalls[id]++
	p.mu.Unlock()
	return p.movieFn(id)
}

func (p *fakeProvider) shows(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showCalls[id]
}

func (p *fakeProvider) movies(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.movieCalls[id]
}

func newResolverFixture(t *testing.T, provider Provider, noDateRecheck time.Duration) (*models.Database, *ResolverController) {
	t.Helper()

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return db, NewResolverController(db, provider, noDateRecheck, logger)
}

func TestResolveFillsShowDate(t *testing.T) {
	provider := newFakeProvider()
	date := "2024-05-01"
	provider.showFn = func(string) (*string, error) { return &date, nil }

	db, resolver := newResolverFixture(t, provider, time.Hour)

	if err := db.AddEntity(&models.Entity{ID: "42", Kind: models.KindShow, Title: "A Show", Status: models.StatusPlanToWatch}); err != nil {
		t.Fatalf("Failed to add show: %v", err)
	}

	if err := resolver.ResolveMissing(context.Background()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	entity, err := db.GetEntity(models.KindShow, "42")
	if err != nil {
		t.Fatalf("Failed to get show: %v", err)
	}
	if entity.NextAirDate == nil || *entity.NextAirDate != date {
		t.Fatalf("Expected next air date %s, got %v", date, entity.NextAirDate)
	}

	// The calendar derived from the updated snapshot carries the show
	entities, _ := db.GetAllEntities()
	calendar := BuildCalendar(entities)
	items := calendar.Days[date]
	if len(items) != 1 || items[0].Kind != models.KindShow || items[0].ID != "42" {
		t.Errorf("Expected show 42 on %s, got %v", date, items)
	}

	// A resolved entity leaves the needs-fetch set
	shows, _ := db.GetShowsNeedingAirDate()
	if len(shows) != 0 {
		t.Errorf("Expected empty needs-fetch set, got %d", len(shows))
	}
}

func TestResolveNoDateStaysInNeedsFetch(t *testing.T) {
	provider := newFakeProvider()
	db, resolver := newResolverFixture(t, provider, time.Hour)

	if err := db.AddEntity(&models.Entity{ID: "7", Kind: models.KindMovie, Title: "A Movie", Status: models.StatusPlanToWatch}); err != nil {
		t.Fatalf("Failed to add movie: %v", err)
	}

	if err := resolver.ResolveMissing(context.Background()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	entity, _ := db.GetEntity(models.KindMovie, "7")
	if entity.ReleaseDate != nil {
		t.Fatalf("Expected release date to stay nil, got %v", *entity.ReleaseDate)
	}

	// Still in the needs-fetch set on the next evaluation
	movies, _ := db.GetMoviesNeedingReleaseDate()
	if len(movies) != 1 {
		t.Fatalf("Expected movie to stay in needs-fetch set, got %d entries", len(movies))
	}

	// But the no-date cache keeps the next pass from asking again right away
	if err := resolver.ResolveMissing(context.Background()); err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}
	if calls := provider.movies("7"); calls != 1 {
		t.Errorf("Expected 1 provider call within recheck window, got %d", calls)
	}
}

func TestResolveNoDateRecheckedAfterWindow(t *testing.T) {
	provider := newFakeProvider()
	db, resolver := newResolverFixture(t, provider, 10*time.Millisecond)

	if err := db.AddEntity(&models.Entity{ID: "7", Kind: models.KindMovie, Title: "A Movie", Status: models.StatusPlanToWatch}); err != nil {
		t.Fatalf("Failed to add movie: %v", err)
	}

	resolver.ResolveMissing(context.Background())
	time.Sleep(30 * time.Millisecond)
	resolver.ResolveMissing(context.Background())

	if calls := provider.movies("7"); calls != 2 {
		t.Errorf("Expected re-query after recheck window, got %d calls", calls)
	}
}

func TestResolveFailureRetriedNextPass(t *testing.T) {
	provider := newFakeProvider()
	date := "2024-05-01"
	provider.showFn = func(id string) (*string, error) {
		if provider.shows(id) == 1 {
			return nil, context.DeadlineExceeded
		}
		return &date, nil
	}

	db, resolver := newResolverFixture(t, provider, time.Hour)

	if err := db.AddEntity(&models.Entity{ID: "42", Kind: models.KindShow, Title: "A Show", Status: models.StatusWatching}); err != nil {
		t.Fatalf("Failed to add show: %v", err)
	}

	// First pass fails; the entity stays untouched and unfailed
	resolver.ResolveMissing(context.Background())
	entity, _ := db.GetEntity(models.KindShow, "42")
	if entity.NextAirDate != nil {
		t.Fatalf("Expected no date after failed fetch, got %v", *entity.NextAirDate)
	}

	// Second pass succeeds
	resolver.ResolveMissing(context.Background())
	entity, _ = db.GetEntity(models.KindShow, "42")
	if entity.NextAirDate == nil || *entity.NextAirDate != date {
		t.Errorf("Expected date after retry, got %v", entity.NextAirDate)
	}
	if calls := provider.shows("42"); calls != 2 {
		t.Errorf("Expected 2 provider calls, got %d", calls)
	}
}

func TestRemoveDuringFlightDoesNotRecreate(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	date := "2024-05-01"

	provider := newFakeProvider()
	provider.showFn = func(string) (*string, error) {
		close(started)
		<-proceed
		return &date, nil
	}

	db, resolver := newResolverFixture(t, provider, time.Hour)

	if err := db.AddEntity(&models.Entity{ID: "42", Kind: models.KindShow, Title: "A Show", Status: models.StatusPlanToWatch}); err != nil {
		t.Fatalf("Failed to add show: %v", err)
	}

	done := make(chan error)
	go func() {
		done <- resolver.ResolveMissing(context.Background())
	}()

	// Remove the entity while its fetch is in flight, then let it finish
	<-started
	if err := db.RemoveEntity(models.KindShow, "42"); err != nil {
		t.Fatalf("Failed to remove show: %v", err)
	}
	close(proceed)

	if err := <-done; err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// The late write is a harmless lost write
	entities, _ := db.GetAllEntities()
	if len(entities) != 0 {
		t.Errorf("Expected store to stay empty, got %d entities", len(entities))
	}
}

func TestConcurrentResolvesShareOneFetch(t *testing.T) {
	started := make(chan struct{}, 1)
	proceed := make(chan struct{})
	date := "2024-05-01"

	provider := newFakeProvider()
	provider.showFn = func(string) (*string, error) {
		started <- struct{}{}
		<-proceed
		return &date, nil
	}

	db, resolver := newResolverFixture(t, provider, time.Hour)

	if err := db.AddEntity(&models.Entity{ID: "42", Kind: models.KindShow, Title: "A Show", Status: models.StatusPlanToWatch}); err != nil {
		t.Fatalf("Failed to add show: %v", err)
	}

	done := make(chan error, 2)
	go func() { done <- resolver.ResolveMissing(context.Background()) }()
	<-started
	go func() { done <- resolver.ResolveMissing(context.Background()) }()

	// Give the second pass time to park on the in-flight request
	time.Sleep(100 * time.Millisecond)
	close(proceed)

	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}

	if calls := provider.shows("42"); calls != 1 {
		t.Errorf("Expected a single deduplicated fetch, got %d", calls)
	}

	entity, _ := db.GetEntity(models.KindShow, "42")
	if entity.NextAirDate == nil || *entity.NextAirDate != date {
		t.Errorf("Expected date to be written once, got %v", entity.NextAirDate)
	}
}
