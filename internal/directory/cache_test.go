package directory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clinicware/booking-platform/internal/scheduling"
	"github.com/clinicware/booking-platform/pkg/logging"
)

type countingDirectory struct {
	*FakeDirectory
	calls atomic.Int64
}

func (c *countingDirectory) GetDoctor(ctx context.Context, id string) (*Doctor, error) {
	c.calls.Add(1)
	return c.FakeDirectory.GetDoctor(ctx, id)
}

func testDoctor(t *testing.T) Doctor {
	t.Helper()
	start, err := scheduling.ParseTimeOfDay("08:00")
	if err != nil {
		t.Fatal(err)
	}
	end, err := scheduling.ParseTimeOfDay("17:00")
	if err != nil {
		t.Fatal(err)
	}
	return Doctor{
		ID:          "doc-1",
		Name:        "Dr. Ana Torres",
		Specialty:   "Cardiology",
		Active:      true,
		WorkStart:   start,
		WorkEnd:     end,
		SlotMinutes: 30,
	}
}

func TestCachedDirectoryServesSecondReadFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	source := &countingDirectory{FakeDirectory: NewFakeDirectory(testDoctor(t))}
	cached := NewCachedDirectory(source, rdb, time.Minute, logging.Default())

	for i := 0; i < 3; i++ {
		doc, err := cached.GetDoctor(context.Background(), "doc-1")
		if err != nil {
			t.Fatalf("GetDoctor (%d): %v", i, err)
		}
		if doc.Name != "Dr. Ana Torres" {
			t.Fatalf("unexpected doctor %+v", doc)
		}
	}

	if got := source.calls.Load(); got != 1 {
		t.Fatalf("expected a single source hit, got %d", got)
	}
}

func TestCachedDirectoryExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	source := &countingDirectory{FakeDirectory: NewFakeDirectory(testDoctor(t))}
	cached := NewCachedDirectory(source, rdb, time.Second, logging.Default())

	if _, err := cached.GetDoctor(context.Background(), "doc-1"); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := cached.GetDoctor(context.Background(), "doc-1"); err != nil {
		t.Fatal(err)
	}

	if got := source.calls.Load(); got != 2 {
		t.Fatalf("expected cache expiry to hit the source again, got %d calls", got)
	}
}

func TestCachedDirectoryFallsThroughWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	source := &countingDirectory{FakeDirectory: NewFakeDirectory(testDoctor(t))}
	cached := NewCachedDirectory(source, rdb, time.Minute, logging.Default())

	doc, err := cached.GetDoctor(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("cache outage must not fail reads: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Fatalf("unexpected doctor %+v", doc)
	}
}

func TestCachedDirectoryRecoversFromCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	if err := mr.Set(cacheKey("doc-1"), "{not json"); err != nil {
		t.Fatal(err)
	}

	source := &countingDirectory{FakeDirectory: NewFakeDirectory(testDoctor(t))}
	cached := NewCachedDirectory(source, rdb, time.Minute, logging.Default())

	doc, err := cached.GetDoctor(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDoctor: %v", err)
	}
	if doc.Specialty != "Cardiology" {
		t.Fatalf("unexpected doctor %+v", doc)
	}
	if got := source.calls.Load(); got != 1 {
		t.Fatalf("expected corrupt entry to fall through to source once, got %d", got)
	}
}

func TestCachedDirectoryPropagatesNotFound(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	source := &countingDirectory{FakeDirectory: NewFakeDirectory()}
	cached := NewCachedDirectory(source, rdb, time.Minute, logging.Default())

	if _, err := cached.GetDoctor(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
