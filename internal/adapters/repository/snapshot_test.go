package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/contribgrid/internal/domain/layout"
	"github.com/okian/contribgrid/internal/domain/model"
)

func readyOutcome(t *testing.T, counts ...int) model.Outcome {
	t.Helper()
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	days := make([]model.ContributionDay, len(counts))
	for i, c := range counts {
		d := start.AddDate(0, 0, i)
		days[i] = model.ContributionDay{Date: d, Weekday: int(d.Weekday()), ContributionCount: c}
	}
	m, err := model.New(model.Meta{Login: "octocat", Name: "Octo", TotalContributions: 42},
		layout.New().Build(layout.Classify(days)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model.Outcome{State: model.StateReady, Model: m}
}

func TestSnapshotStore_Loading(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	st := store.Status(ctx)
	if st.State != "loading" {
		t.Errorf("expected loading, got %q", st.State)
	}
	if store.Count(ctx) != 0 {
		t.Errorf("expected no cells, got %d", store.Count(ctx))
	}
	if _, err := store.Cell(ctx, 1); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestSnapshotStore_Failed(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	store.Publish(ctx, NewSnapshot(3, model.Outcome{State: model.StateFailed, Err: errors.New("offline")}))

	st := store.Status(ctx)
	if st.State != "failed" || st.Error != "offline" || st.Frame != 3 {
		t.Errorf("unexpected status %+v", st)
	}
	if _, err := store.Cell(ctx, 1); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestSnapshotStore_Ready(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	out := readyOutcome(t, -5, 0, 10, 14, 30, 46, 60, 3)

	store.Publish(ctx, NewSnapshot(1, out))

	st := store.Status(ctx)
	if st.State != "ready" || st.CellCount != 8 || len(st.Cells) != 8 {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.Login != "octocat" || st.Name != "Octo" || st.TotalContributions != 42 {
		t.Errorf("unexpected meta %+v", st)
	}

	c, err := store.Cell(ctx, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "bar-8" || c.Column != 1 || c.Row != 1 || c.Level != 2 || c.Date != "2022-01-08" {
		t.Errorf("unexpected cell %+v", c)
	}

	for _, day := range []int{0, 9, -1} {
		if _, err := store.Cell(ctx, day); !errors.Is(err, ErrNotFound) {
			t.Errorf("day %d: expected ErrNotFound, got %v", day, err)
		}
	}
}

func TestSnapshotStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	out := readyOutcome(t, 1, 2, 3)

	store.Publish(ctx, NewSnapshot(1, out))
	out.Model.Move(model.IDFor(2), model.NewPose(9, 9, 9))

	c, _ := store.Cell(ctx, 2)
	if c.Moved {
		t.Error("published snapshot must not observe later moves")
	}

	store.Publish(ctx, NewSnapshot(2, out))
	c, _ = store.Cell(ctx, 2)
	if !c.Moved || c.Pose.Position != (model.Vec3{X: 9, Y: 9, Z: 9}) {
		t.Errorf("expected moved pose after republish, got %+v", c)
	}
}

func TestSnapshotStore_NilPublishIgnored(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	store.Publish(ctx, nil)
	if store.Latest() == nil || store.Status(ctx).State != "loading" {
		t.Error("nil publish must keep the previous snapshot")
	}
}

func TestSnapshotStore_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	out := readyOutcome(t, make([]int, 364)...)

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				st := store.Status(ctx)
				if st.State == "ready" && st.CellCount != 364 {
					t.Errorf("torn snapshot: %d cells", st.CellCount)
					return
				}
			}
		}()
	}
	for f := uint64(1); f <= 50; f++ {
		store.Publish(ctx, NewSnapshot(f, out))
	}
	wg.Wait()
}
