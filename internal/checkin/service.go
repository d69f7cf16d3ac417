package checkin

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberportal/internal/roster"
)

// Directory is the slice of the roster the check-in tool needs: CWID and
// legacy id lookups, plus profile creation for the new-student path.
type Directory interface {
	FindByStudentID(ctx context.Context, cwid string) (*roster.Profile, error)
	GetByID(ctx context.Context, id string) (*roster.Profile, error)
	Insert(ctx context.Context, p *roster.Profile) error
}

// Service runs the check-in flow against an event's record list.
type Service struct {
	repo Repository
	dir  Directory
}

// NewService creates a service.
func NewService(repo Repository, dir Directory) *Service {
	return &Service{repo: repo, dir: dir}
}

func (s *Service) authorize(actor roster.Profile) error {
	if !roster.CapabilitiesFor(actor.Role).ManageCheckins {
		return ErrPermissionDenied
	}
	return nil
}

// Events lists all check-in events.
func (s *Service) Events(ctx context.Context, actor roster.Profile) ([]Event, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx)
}

// Event returns a single check-in event.
func (s *Service) Event(ctx context.Context, actor roster.Profile, eventID string) (Event, error) {
	if err := s.authorize(actor); err != nil {
		return Event{}, err
	}
	evt, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	return *evt, nil
}

// Records lists an event's records in append order.
func (s *Service) Records(ctx context.Context, actor roster.Profile, eventID string) ([]Record, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListRecords(ctx, eventID)
}

// CreateEvent opens a new active event dated now.
func (s *Service) CreateEvent(ctx context.Context, actor roster.Profile, name string) (Event, error) {
	if err := s.authorize(actor); err != nil {
		return Event{}, err
	}
	if strings.TrimSpace(name) == "" {
		return Event{}, ErrNameRequired
	}
	evt := Event{Name: strings.TrimSpace(name), Date: time.Now().UTC(), IsActive: true}
	if err := s.repo.CreateEvent(ctx, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// DeleteEvent removes an event and all of its records.
func (s *Service) DeleteEvent(ctx context.Context, actor roster.Profile, eventID string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, eventID)
}

// CheckIn resolves the operator's input against the roster and appends a
// record. A second check-in of the same person is rejected without
// mutation. When nobody matches, an UnknownStudentError carries the
// candidate CWID for the new-student form.
func (s *Service) CheckIn(ctx context.Context, actor roster.Profile, eventID, input string) (Record, error) {
	if err := s.authorize(actor); err != nil {
		return Record{}, err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return Record{}, err
	}

	cwid := ExtractCWID(input)

	profile, err := s.dir.FindByStudentID(ctx, cwid)
	if err != nil {
		return Record{}, err
	}
	if profile == nil {
		// Legacy path: some older records key on the account id.
		profile, err = s.dir.GetByID(ctx, cwid)
		if err != nil && !errors.Is(err, roster.ErrNotFound) {
			return Record{}, err
		}
	}
	if profile == nil {
		return Record{}, &UnknownStudentError{CWID: cwid}
	}

	records, err := s.repo.ListRecords(ctx, eventID)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if (rec.CWID != "" && rec.CWID == cwid) || (rec.UserID != "" && rec.UserID == profile.ID) {
			return Record{}, ErrAlreadyCheckedIn
		}
	}

	rec := Record{
		EventID:   eventID,
		UserID:    profile.ID,
		CWID:      cwid,
		Name:      strings.TrimSpace(profile.FirstName + " " + profile.LastName),
		Email:     profile.Email,
		CheckedAt: time.Now().UTC(),
		IsGuest:   false,
		IsMember:  profile.IsMember(),
	}
	if err := s.repo.AppendRecord(ctx, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// NewStudent is the new-student form submitted when a CWID resolves to
// nobody.
type NewStudent struct {
	FirstName      string
	LastName       string
	Email          string
	Classification roster.Classification
	CWID           string
}

// RegisterAndCheckIn creates a Member profile for an unknown student and
// appends the matching record in one flow.
func (s *Service) RegisterAndCheckIn(ctx context.Context, actor roster.Profile, eventID string, ns NewStudent) (Record, error) {
	if err := s.authorize(actor); err != nil {
		return Record{}, err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(ns.FirstName) == "" || strings.TrimSpace(ns.LastName) == "" {
		return Record{}, ErrNameRequired
	}
	if ns.Classification == "" {
		ns.Classification = roster.ClassFreshman
	}

	profile := roster.Profile{
		Email:          ns.Email,
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		Classification: ns.Classification,
		Role:           roster.RoleMember,
		StudentID:      ns.CWID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.dir.Insert(ctx, &profile); err != nil {
		return Record{}, err
	}

	rec := Record{
		EventID:   eventID,
		UserID:    profile.ID,
		CWID:      ns.CWID,
		Name:      ns.FirstName + " " + ns.LastName,
		Email:     ns.Email,
		CheckedAt: time.Now().UTC(),
		IsGuest:   false,
		IsMember:  true,
	}
	if err := s.repo.AppendRecord(ctx, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// AddGuest appends a guest record. Guests carry no profile reference and
// never count as members.
func (s *Service) AddGuest(ctx context.Context, actor roster.Profile, eventID, name, note string) (Record, error) {
	if err := s.authorize(actor); err != nil {
		return Record{}, err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(name) == "" {
		return Record{}, ErrNameRequired
	}
	rec := Record{
		EventID:   eventID,
		Name:      strings.TrimSpace(name),
		CheckedAt: time.Now().UTC(),
		IsGuest:   true,
		IsMember:  false,
		Note:      note,
	}
	if err := s.repo.AppendRecord(ctx, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// DeleteRecord removes one record from an event.
func (s *Service) DeleteRecord(ctx context.Context, actor roster.Profile, eventID, recordID string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return err
	}
	return s.repo.DeleteRecord(ctx, eventID, recordID)
}
