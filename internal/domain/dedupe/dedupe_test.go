package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/multielo/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemory()

		Convey("When a matchup id is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "m-1")

			Convey("Then it is new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then a second submission is a duplicate", func() {
				So(d.SeenAndRecord(ctx, "m-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an id is unrecorded", func() {
			d.SeenAndRecord(ctx, "m-1")
			d.Unrecord(ctx, "m-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be submitted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "m-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemory(dedupe.WithMaxSize(3))
		for _, id := range []string{"m-1", "m-2", "m-3"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("When it overflows", func() {
			So(d.SeenAndRecord(ctx, "m-4"), ShouldBeFalse)

			Convey("Then the oldest id is forgotten first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "m-2"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "m-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "m-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "m-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When a middle id is unrecorded before overflowing", func() {
			d.Unrecord(ctx, "m-2")
			d.SeenAndRecord(ctx, "m-4")
			d.SeenAndRecord(ctx, "m-5")

			Convey("Then eviction still follows insertion order", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "m-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "m-5"), ShouldBeTrue)
			})
		})

		Convey("When every id is unrecorded", func() {
			for _, id := range []string{"m-3", "m-1", "m-2"} {
				d.Unrecord(ctx, id)
			}

			Convey("Then the deduper is empty and usable", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "m-9"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemory(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("m-%d", i))
		}

		Convey("Then nothing is evicted", func() {
			So(d.Size(), ShouldEqual, int64(1000))
			So(d.SeenAndRecord(ctx, "m-0"), ShouldBeTrue)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper shared by goroutines", t, func() {
		d := dedupe.NewInMemory(dedupe.WithMaxSize(1000))
		const workers, perWorker = 10, 100

		Convey("When they record distinct ids concurrently", func() {
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						d.SeenAndRecord(context.Background(), fmt.Sprintf("m-%d-%d", w, j))
					}
				}(w)
			}
			wg.Wait()

			Convey("Then every id is recorded", func() {
				So(d.Size(), ShouldEqual, int64(workers*perWorker))
			})
		})

		Convey("When they race on the same id", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(context.Background(), "same") {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(fresh, ShouldEqual, 1)
			})
		})
	})
}
