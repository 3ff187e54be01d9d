package sweep

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/monkeyprint/listings/services/listing-service/internal/model"
)

type memRepo struct {
	mu       sync.Mutex
	listings map[string]*model.Listing
	failOn   map[string]error
	findErr  error
}

func newMemRepo(ls ...model.Listing) *memRepo {
	r := &memRepo{listings: map[string]*model.Listing{}, failOn: map[string]error{}}
	for i := range ls {
		l := ls[i]
		r.listings[l.ID] = &l
	}
	return r
}

func (r *memRepo) FindExpiredWindows(_ context.Context, ref time.Time) ([]model.Listing, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Listing
	for _, l := range r.listings {
		if !l.IsDeleted && l.EndDate != nil && l.EndDate.Before(ref) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) ClearWindow(_ context.Context, id string, ref time.Time) (bool, error) {
	if err := r.failOn[id]; err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok || l.EndDate == nil || !l.EndDate.Before(ref) {
		return false, nil
	}
	l.StartDate, l.EndDate = nil, nil
	return true, nil
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepClearsOnlyEndedWindows(t *testing.T) {
	repo := newMemRepo(
		model.Listing{ID: "a", StartDate: day(2024, 5, 1), EndDate: day(2024, 5, 31)},
		model.Listing{ID: "b", StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 30)},
		model.Listing{ID: "c", StartDate: day(2024, 1, 1)},
		model.Listing{ID: "d", EndDate: day(2024, 6, 14), IsDeleted: true},
		model.Listing{ID: "e", EndDate: day(2024, 6, 15)},
	)
	s := New(repo, discard())

	res, err := s.Sweep(context.Background(), *day(2024, 6, 15))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.ClearedCount != 1 || len(res.ClearedIDs) != 1 || res.ClearedIDs[0] != "a" {
		t.Fatalf("got %+v", res)
	}

	a := repo.listings["a"]
	if a.StartDate != nil || a.EndDate != nil {
		t.Fatalf("window a not cleared: %+v", a)
	}
	if repo.listings["b"].EndDate == nil {
		t.Fatal("active window b cleared")
	}
	if repo.listings["c"].StartDate == nil {
		t.Fatal("start-only window c must never be swept")
	}
	if repo.listings["e"].EndDate == nil {
		t.Fatal("window ending on the reference day is still occupied")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	// One window ends yesterday, the other tomorrow.
	repo := newMemRepo(
		model.Listing{ID: "past", StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 14)},
		model.Listing{ID: "future", StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 16)},
	)
	s := New(repo, discard())
	ref := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

	first, err := s.Sweep(context.Background(), ref)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.ClearedCount != 1 || first.ClearedIDs[0] != "past" {
		t.Fatalf("first sweep: got %+v", first)
	}

	second, err := s.Sweep(context.Background(), ref)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.ClearedCount != 0 {
		t.Fatalf("second sweep: got %+v", second)
	}
	if repo.listings["future"].EndDate == nil {
		t.Fatal("future window must survive")
	}
}

func TestSweepClearsExpiredWindowOnce(t *testing.T) {
	repo := newMemRepo(model.Listing{ID: "l1", StartDate: day(2025, 6, 1), EndDate: day(2025, 6, 10)})
	s := New(repo, discard())
	ref := *day(2025, 6, 12)

	first, err := s.Sweep(context.Background(), ref)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.ClearedCount != 1 {
		t.Fatalf("first sweep: got %+v", first)
	}
	if l := repo.listings["l1"]; l.StartDate != nil || l.EndDate != nil {
		t.Fatalf("window not cleared: %+v", l)
	}

	second, err := s.Sweep(context.Background(), ref)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.ClearedCount != 0 {
		t.Fatalf("second sweep: got %+v", second)
	}
}

func TestSweepJoinsPerListingErrors(t *testing.T) {
	repo := newMemRepo(
		model.Listing{ID: "a", EndDate: day(2024, 1, 1)},
		model.Listing{ID: "b", EndDate: day(2024, 1, 2)},
		model.Listing{ID: "c", EndDate: day(2024, 1, 3)},
	)
	errDown := errors.New("connection reset")
	repo.failOn["a"] = errDown
	repo.failOn["c"] = errDown

	res, err := New(repo, discard()).Sweep(context.Background(), *day(2024, 6, 1))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errDown) {
		t.Fatalf("error should wrap cause: %v", err)
	}
	if !strings.Contains(err.Error(), "clear window a") || !strings.Contains(err.Error(), "clear window c") {
		t.Fatalf("error should name both listings: %v", err)
	}
	if res.ClearedCount != 1 || res.ClearedIDs[0] != "b" {
		t.Fatalf("healthy listing should still be cleared: %+v", res)
	}
}

func TestSweepFindError(t *testing.T) {
	repo := newMemRepo()
	repo.findErr = errors.New("db down")
	if _, err := New(repo, discard()).Sweep(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestConcurrentSweepsCountEachListingOnce(t *testing.T) {
	var ls []model.Listing
	for i := 0; i < 20; i++ {
		ls = append(ls, model.Listing{ID: string(rune('a' + i)), EndDate: day(2024, 1, 1+i)})
	}
	repo := newMemRepo(ls...)
	s := New(repo, discard())

	var wg sync.WaitGroup
	results := make([]Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.Sweep(context.Background(), *day(2024, 6, 1))
			if err != nil {
				t.Errorf("sweep %d: %v", i, err)
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += r.ClearedCount
	}
	if total != len(ls) {
		t.Fatalf("cleared %d listings across sweeps, want %d", total, len(ls))
	}
}
