package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/hylla/nametag/internal/domain"
)

func TestSnapshotHolderPublish(t *testing.T) {
	var holder SnapshotHolder
	if _, ok := holder.Current(); ok {
		t.Fatal("expected empty holder")
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			holder.Publish(Snapshot{ID: string(rune('a' + i)), Competitors: make([]domain.Competitor, i)})
		}()
	}
	wg.Wait()

	snap, ok := holder.Current()
	if !ok {
		t.Fatal("expected published snapshot")
	}
	if int(snap.ID[0]-'a') != len(snap.Competitors) {
		t.Fatalf("snapshot fields from different publishes: %q with %d competitors", snap.ID, len(snap.Competitors))
	}
}

func TestSnapshotLookups(t *testing.T) {
	snap := Snapshot{
		Competitors: competitors(3),
		Pages:       []domain.Page{{Number: 1}},
	}
	if c, err := snap.Competitor(2); err != nil || c.Index != 2 {
		t.Fatalf("unexpected competitor lookup (%+v, %v)", c, err)
	}
	if _, err := snap.Competitor(3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := snap.Page(0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if p, err := snap.Page(1); err != nil || p.Number != 1 {
		t.Fatalf("unexpected page lookup (%+v, %v)", p, err)
	}
}
