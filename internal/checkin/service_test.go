package checkin

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberportal/internal/roster"
)

type fakeRepo struct {
	events  map[string]*Event
	records map[string][]Record
	nextID  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:  make(map[string]*Event),
		records: make(map[string][]Record),
	}
}

func (r *fakeRepo) id() string {
	r.nextID++
	return fmt.Sprintf("id-%d", r.nextID)
}

func (r *fakeRepo) ListEvents(ctx context.Context) ([]Event, error) {
	out := make([]Event, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, *evt)
	}
	return out, nil
}

func (r *fakeRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	evt, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return evt, nil
}

func (r *fakeRepo) CreateEvent(ctx context.Context, evt *Event) error {
	if evt.ID == "" {
		evt.ID = r.id()
	}
	r.events[evt.ID] = evt
	return nil
}

func (r *fakeRepo) DeleteEvent(ctx context.Context, id string) error {
	delete(r.events, id)
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) ListRecords(ctx context.Context, eventID string) ([]Record, error) {
	return append([]Record(nil), r.records[eventID]...), nil
}

func (r *fakeRepo) AppendRecord(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = r.id()
	}
	r.records[rec.EventID] = append(r.records[rec.EventID], *rec)
	return nil
}

func (r *fakeRepo) DeleteRecord(ctx context.Context, eventID, recordID string) error {
	recs := r.records[eventID]
	for i, rec := range recs {
		if rec.ID == recordID {
			r.records[eventID] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeDirectory struct {
	byCWID map[string]*roster.Profile
	byID   map[string]*roster.Profile
	nextID int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byCWID: make(map[string]*roster.Profile),
		byID:   make(map[string]*roster.Profile),
	}
}

func (d *fakeDirectory) add(p roster.Profile) roster.Profile {
	if p.ID == "" {
		d.nextID++
		p.ID = fmt.Sprintf("user-%d", d.nextID)
	}
	if p.StudentID != "" {
		d.byCWID[p.StudentID] = &p
	}
	d.byID[p.ID] = &p
	return p
}

func (d *fakeDirectory) FindByStudentID(ctx context.Context, cwid string) (*roster.Profile, error) {
	return d.byCWID[cwid], nil
}

func (d *fakeDirectory) GetByID(ctx context.Context, id string) (*roster.Profile, error) {
	p, ok := d.byID[id]
	if !ok {
		return nil, roster.ErrNotFound
	}
	return p, nil
}

func (d *fakeDirectory) Insert(ctx context.Context, p *roster.Profile) error {
	*p = d.add(*p)
	return nil
}

var board = roster.Profile{ID: "board-1", Role: roster.RoleBoard}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeDirectory, Event) {
	t.Helper()
	repo := newFakeRepo()
	dir := newFakeDirectory()
	svc := NewService(repo, dir)
	evt, err := svc.CreateEvent(context.Background(), board, "Fall Mixer")
	require.NoError(t, err)
	return svc, repo, dir, evt
}

func TestExtractCWID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{";12345678?", "12345678"},
		{"%B1234^DOE/JOHN^;12345678=2508?", "12345678"},
		{"12345678", "12345678"},
		{"123456789012", "12345678"},
		{"1234", "1234"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractCWID(tt.input), "input %q", tt.input)
	}
}

func TestCheckInKnownStudent(t *testing.T) {
	svc, _, dir, evt := newTestService(t)
	dir.add(roster.Profile{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@warhawks.ulm.edu",
		StudentID: "12345678",
		Role:      roster.RoleMember,
	})

	rec, err := svc.CheckIn(context.Background(), board, evt.ID, ";12345678?")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "12345678", rec.CWID)
	assert.True(t, rec.IsMember)
	assert.False(t, rec.IsGuest)
}

func TestCheckInNonMemberStudent(t *testing.T) {
	svc, _, dir, evt := newTestService(t)
	dir.add(roster.Profile{
		FirstName: "Sam",
		LastName:  "Lee",
		StudentID: "99990000",
		Role:      roster.RoleNotAMember,
	})

	rec, err := svc.CheckIn(context.Background(), board, evt.ID, "99990000")
	require.NoError(t, err)
	assert.False(t, rec.IsMember)
	assert.False(t, rec.IsGuest)
}

func TestCheckInDuplicateRejected(t *testing.T) {
	svc, repo, dir, evt := newTestService(t)
	dir.add(roster.Profile{
		FirstName: "Jane",
		LastName:  "Doe",
		StudentID: "12345678",
		Role:      roster.RoleMember,
	})

	_, err := svc.CheckIn(context.Background(), board, evt.ID, "12345678")
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), board, evt.ID, ";12345678?")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	recs, err := repo.ListRecords(context.Background(), evt.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1, "rejection must not mutate the record list")
}

func TestCheckInLegacyIDFallback(t *testing.T) {
	svc, _, dir, evt := newTestService(t)
	// Profile with no CWID on file, keyed only by account id.
	p := dir.add(roster.Profile{
		ID:        "12312312",
		FirstName: "Old",
		LastName:  "Timer",
		Role:      roster.RoleMember,
	})

	rec, err := svc.CheckIn(context.Background(), board, evt.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, rec.UserID)
}

func TestCheckInUnknownStudent(t *testing.T) {
	svc, _, _, evt := newTestService(t)

	_, err := svc.CheckIn(context.Background(), board, evt.ID, ";87654321?")
	var unknown *UnknownStudentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "87654321", unknown.CWID)
}

func TestRegisterAndCheckInFlow(t *testing.T) {
	svc, _, dir, evt := newTestService(t)
	ctx := context.Background()

	// Swipe resolves to nobody; the error carries the CWID for the form.
	_, err := svc.CheckIn(ctx, board, evt.ID, "12345678")
	var unknown *UnknownStudentError
	require.True(t, errors.As(err, &unknown))

	rec, err := svc.RegisterAndCheckIn(ctx, board, evt.ID, NewStudent{
		FirstName: "Anu",
		LastName:  "Thapa",
		CWID:      unknown.CWID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anu Thapa", rec.Name)
	assert.True(t, rec.IsMember)
	assert.False(t, rec.IsGuest)

	created, err := dir.FindByStudentID(ctx, "12345678")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, roster.RoleMember, created.Role)

	recs, err := svc.Records(ctx, board, evt.ID)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 1, Members: 1, Guests: 0, NonMembers: 0}, Summarize(recs))
}

func TestRegisterAndCheckInRequiresName(t *testing.T) {
	svc, _, _, evt := newTestService(t)
	_, err := svc.RegisterAndCheckIn(context.Background(), board, evt.ID, NewStudent{
		FirstName: "  ",
		LastName:  "Thapa",
		CWID:      "12345678",
	})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestAddGuest(t *testing.T) {
	svc, _, _, evt := newTestService(t)

	rec, err := svc.AddGuest(context.Background(), board, evt.ID, "  Visiting Friend ", "brought by Jane")
	require.NoError(t, err)
	assert.Equal(t, "Visiting Friend", rec.Name)
	assert.True(t, rec.IsGuest)
	assert.False(t, rec.IsMember)
	assert.Empty(t, rec.UserID)

	_, err = svc.AddGuest(context.Background(), board, evt.ID, "   ", "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestDeleteRecord(t *testing.T) {
	svc, _, dir, evt := newTestService(t)
	ctx := context.Background()
	dir.add(roster.Profile{FirstName: "A", LastName: "B", StudentID: "11112222", Role: roster.RoleMember})

	rec, err := svc.CheckIn(ctx, board, evt.ID, "11112222")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecord(ctx, board, evt.ID, rec.ID))

	recs, err := svc.Records(ctx, board, evt.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// The person can check in again once their record is gone.
	_, err = svc.CheckIn(ctx, board, evt.ID, "11112222")
	assert.NoError(t, err)
}

func TestCheckInPermissionDenied(t *testing.T) {
	svc, _, _, evt := newTestService(t)
	member := roster.Profile{ID: "m-1", Role: roster.RoleMember}

	_, err := svc.CheckIn(context.Background(), member, evt.ID, "12345678")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Events(context.Background(), member)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCheckInUnknownEvent(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.CheckIn(context.Background(), board, "nope", "12345678")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
