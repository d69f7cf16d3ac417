package roster

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Service coordinates roster reads and guarded mutations.
type Service struct {
	repo Repository
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List fetches every profile and applies the filters in memory.
func (s *Service) List(ctx context.Context, f Filters) ([]Profile, error) {
	profiles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(profiles), nil
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// CanEdit enforces the privilege-escalation guard: a Board Member may not
// edit another Board Member or the President. The President may edit anyone.
func CanEdit(actor Profile, target Profile) bool {
	if !CapabilitiesFor(actor.Role).ManageRoster {
		return false
	}
	if actor.Role == RoleBoard && (target.Role == RoleBoard || target.Role == RolePresident) {
		return false
	}
	return true
}

// Update validates and writes an edited profile. The target is resolved by
// a secondary lookup on its email so that a person present under more than
// one row is updated everywhere.
func (s *Service) Update(ctx context.Context, actor Profile, updated Profile) (Profile, error) {
	target, err := s.repo.GetByID(ctx, updated.ID)
	if err != nil {
		return Profile{}, err
	}
	// The write lands on every row sharing the email, so the guard has to
	// clear every one of them, not just the row picked by id.
	rows, err := s.repo.FindByEmail(ctx, target.Email)
	if err != nil {
		return Profile{}, err
	}
	if len(rows) == 0 {
		rows = []Profile{*target}
	}
	for _, row := range rows {
		if !CanEdit(actor, row) {
			return Profile{}, ErrEditForbidden
		}
	}
	if !ValidRole(string(updated.Role)) {
		return Profile{}, ErrInvalidRole
	}
	if !ValidClassification(string(updated.Classification)) {
		return Profile{}, ErrInvalidClass
	}
	if (updated.Role == RoleBoard || updated.Role == RolePresident) &&
		!CapabilitiesFor(actor.Role).AssignElevated {
		return Profile{}, ErrAssignForbidden
	}
	if updated.StudentID != "" && !ValidCWID(updated.StudentID) {
		return Profile{}, ErrInvalidCWID
	}

	updated.FirstName = FormatName(updated.FirstName)
	updated.LastName = FormatName(updated.LastName)

	if _, err := s.repo.UpdateByEmail(ctx, target.Email, updated); err != nil {
		return Profile{}, err
	}
	return updated, nil
}

// UpdateOwnClassification lets a signed-in person change their academic
// year. No roster capability is needed; everything else on the profile is
// left alone.
func (s *Service) UpdateOwnClassification(ctx context.Context, actor Profile, class Classification) (Profile, error) {
	if !ValidClassification(string(class)) {
		return Profile{}, ErrInvalidClass
	}
	current, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return Profile{}, err
	}
	updated := *current
	updated.Classification = class
	if _, err := s.repo.UpdateByEmail(ctx, current.Email, updated); err != nil {
		return Profile{}, err
	}
	return updated, nil
}

// Add creates a roster entry by hand. The CWID is required here and the
// email is derived from it, matching the manual-add form.
func (s *Service) Add(ctx context.Context, actor Profile, p Profile) (Profile, error) {
	if !CapabilitiesFor(actor.Role).ManageRoster {
		return Profile{}, ErrPermissionDenied
	}
	if !ValidCWID(p.StudentID) {
		return Profile{}, ErrInvalidCWID
	}
	if p.Role == "" {
		p.Role = RoleNotAMember
	}
	if p.Classification == "" {
		p.Classification = ClassFreshman
	}
	if p.Email == "" {
		p.Email = p.StudentID + "@warhawks.ulm.edu"
	}
	p.FirstName = FormatName(p.FirstName)
	p.LastName = FormatName(p.LastName)
	if err := s.repo.Insert(ctx, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import parses the upload and inserts the surviving rows one at a time.
// Parsing failures abort before any insert. Duplicates are detected by
// case-insensitive (first, last) name against the existing roster and
// against earlier rows of the same file; they are skipped, never merged.
func (s *Service) Import(ctx context.Context, actor Profile, upload io.Reader) (ImportResult, error) {
	if !CapabilitiesFor(actor.Role).ManageRoster {
		return ImportResult{}, ErrPermissionDenied
	}
	rows, err := ParseImportCSV(upload)
	if err != nil {
		return ImportResult{}, err
	}

	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[nameKey(p.FirstName, p.LastName)] = true
	}

	var result ImportResult
	for _, row := range rows {
		key := nameKey(row.FirstName, row.LastName)
		if seen[key] {
			result.Skipped++
			continue
		}
		p := Profile{
			Email:          row.Email,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			StudentID:      row.StudentID,
			Classification: ClassFreshman,
			Role:           RoleMember,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, &p); err != nil {
			return result, fmt.Errorf("import %s %s: %w", row.FirstName, row.LastName, err)
		}
		seen[key] = true
		result.Imported++
	}
	return result, nil
}

func nameKey(first, last string) string {
	return strings.ToLower(first) + "\x00" + strings.ToLower(last)
}

// BulkDelete removes the selected profiles via concurrent independent
// deletes. There is no rollback; the batch succeeds only when every delete
// does.
func (s *Service) BulkDelete(ctx context.Context, actor Profile, ids []string) error {
	if !CapabilitiesFor(actor.Role).ManageRoster {
		return ErrPermissionDenied
	}
	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = s.repo.Delete(ctx, id)
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return ErrPartialBulkDelete
		}
	}
	return nil
}
