package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberportal/internal/roster"
)

type fakeRepo struct {
	events map[string]Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[string]Event)}
}

func (r *fakeRepo) List(ctx context.Context) ([]Event, error) {
	out := make([]Event, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt)
	}
	return out, nil
}

func (r *fakeRepo) Get(ctx context.Context, id string) (*Event, error) {
	evt, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &evt, nil
}

func (r *fakeRepo) Insert(ctx context.Context, evt *Event) error {
	if evt.ID == "" {
		evt.ID = "evt-1"
	}
	r.events[evt.ID] = *evt
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, evt Event) error {
	if _, ok := r.events[evt.ID]; !ok {
		return ErrNotFound
	}
	r.events[evt.ID] = evt
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(r.events, id)
	return nil
}

var boardAcct = roster.Profile{ID: "b", Role: roster.RoleBoard}

func TestCreateRejectsReversedDates(t *testing.T) {
	svc := NewService(newFakeRepo())
	start := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), boardAcct, Event{
		Title: "Game Night",
		Start: start,
		End:   start.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrDatesOutOfOrder)

	// Zero-length events are fine.
	_, err = svc.Create(context.Background(), boardAcct, Event{
		Title: "Flash Meetup",
		Start: start,
		End:   start,
	})
	assert.NoError(t, err)
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := NewService(newFakeRepo())
	now := time.Now()
	_, err := svc.Create(context.Background(), boardAcct, Event{Title: "  ", Start: now, End: now})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestMutationsNeedCalendarCapability(t *testing.T) {
	svc := NewService(newFakeRepo())
	member := roster.Profile{ID: "m", Role: roster.RoleMember}
	now := time.Now()

	_, err := svc.Create(context.Background(), member, Event{Title: "X", Start: now, End: now})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = svc.Delete(context.Background(), member, "evt-1")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	start := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), boardAcct, Event{Title: "Game Night", Start: start, End: start.Add(2 * time.Hour)})
	require.NoError(t, err)

	created.Location = "Student Union 202"
	updated, err := svc.Update(context.Background(), boardAcct, created)
	require.NoError(t, err)
	assert.Equal(t, "Student Union 202", updated.Location)

	created.Start = created.End.Add(time.Hour)
	_, err = svc.Update(context.Background(), boardAcct, created)
	assert.ErrorIs(t, err, ErrDatesOutOfOrder)

	created.ID = "missing"
	created.Start = start
	_, err = svc.Update(context.Background(), boardAcct, created)
	assert.ErrorIs(t, err, ErrNotFound)
}
