package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/wuimap/internal/domain/animation"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newController(count, start int) *animation.Controller {
	ctrl, err := animation.New(count, start)
	So(err, ShouldBeNil)
	return ctrl
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
		store := NewMemoryStore(ctx, WithTTL(time.Minute), WithSweepInterval(time.Hour), WithClock(clock.Now))
		Reset(func() { _ = store.Close() })

		Convey("When a session is created", func() {
			id, state, err := store.Create(ctx, newController(4, 3))

			Convey("Then it is reachable by id with the initial state", func() {
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
				So(state, ShouldResemble, animation.State{Index: 3, Count: 4})
				got, err := store.Get(ctx, id)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, state)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then updates apply transitions in order", func() {
				state, err := store.Update(ctx, id, func(c *animation.Controller) error {
					c.Play()
					c.Tick()
					return nil
				})
				So(err, ShouldBeNil)
				So(state.Index, ShouldEqual, 0)
				So(state.Playing, ShouldBeTrue)
			})

			Convey("Then a failing transition reports its error and keeps the state", func() {
				state, err := store.Update(ctx, id, func(c *animation.Controller) error {
					return c.Seek(9)
				})
				So(errors.Is(err, animation.ErrIndexOutOfRange), ShouldBeTrue)
				So(state.Index, ShouldEqual, 3)
			})

			Convey("Then an idle session expires", func() {
				clock.Advance(2 * time.Minute)
				_, err := store.Get(ctx, id)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(store.Sweep(), ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 0)
			})

			Convey("Then activity keeps it alive", func() {
				clock.Advance(45 * time.Second)
				_, err := store.Get(ctx, id)
				So(err, ShouldBeNil)
				clock.Advance(45 * time.Second)
				So(store.Sweep(), ShouldEqual, 0)
			})

			Convey("Then it can be deleted once", func() {
				So(store.Delete(ctx, id), ShouldBeNil)
				So(errors.Is(store.Delete(ctx, id), ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the id is unknown", func() {
			_, err := store.Update(ctx, "nope", func(*animation.Controller) error { return nil })

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When no controller is given", func() {
			_, _, err := store.Create(ctx, nil)

			Convey("Then creation fails", func() {
				So(errors.Is(err, ErrNilController), ShouldBeTrue)
			})
		})
	})

	Convey("Given a store with a session limit", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx, WithMaxSessions(1), WithTTL(0))
		Reset(func() { _ = store.Close() })

		_, _, err := store.Create(ctx, newController(2, 0))
		So(err, ShouldBeNil)

		Convey("Then the next session is refused", func() {
			_, _, err := store.Create(ctx, newController(2, 0))
			So(errors.Is(err, ErrStoreFull), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreConcurrentTicks(t *testing.T) {
	Convey("Given one playing session ticked from many goroutines", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx, WithTTL(0))
		Reset(func() { _ = store.Close() })

		id, _, err := store.Create(ctx, newController(5, 0))
		So(err, ShouldBeNil)
		_, err = store.Update(ctx, id, func(c *animation.Controller) error { c.Play(); return nil })
		So(err, ShouldBeNil)

		const ticks = 103
		var wg sync.WaitGroup
		for range ticks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Update(ctx, id, func(c *animation.Controller) error { c.Tick(); return nil })
			}()
		}
		wg.Wait()

		Convey("Then no tick is lost", func() {
			state, err := store.Get(ctx, id)
			So(err, ShouldBeNil)
			So(state.Index, ShouldEqual, ticks%5)
		})
	})
}
