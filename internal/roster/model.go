package roster

import (
	"regexp"
	"strings"
	"time"
)

// Role is ordered by privilege, lowest first.
type Role string

const (
	RoleNotAMember Role = "Not a Member"
	RoleMember     Role = "Member"
	RoleBoard      Role = "Board Member"
	RolePresident  Role = "President"
)

// Classification is the academic year of a student.
type Classification string

const (
	ClassFreshman  Classification = "Freshman"
	ClassSophomore Classification = "Sophomore"
	ClassJunior    Classification = "Junior"
	ClassSenior    Classification = "Senior"
)

// ValidRole reports whether s is one of the four roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleNotAMember, RoleMember, RoleBoard, RolePresident:
		return true
	}
	return false
}

// ValidClassification reports whether s is one of the four classifications.
func ValidClassification(s string) bool {
	switch Classification(s) {
	case ClassFreshman, ClassSophomore, ClassJunior, ClassSenior:
		return true
	}
	return false
}

// Profile is one roster record. StudentID is the 8-digit CWID and may be
// empty for accounts created at signup before a card is on file.
type Profile struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Classification Classification `json:"classification"`
	Role           Role           `json:"role"`
	StudentID      string         `json:"studentId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// IsMember reports whether the role counts as a member for check-in
// purposes. Every role except "Not a Member" qualifies.
func (p Profile) IsMember() bool {
	switch p.Role {
	case RoleMember, RoleBoard, RolePresident:
		return true
	}
	return false
}

// Capabilities is the permission set derived from a role. Handlers consult
// this instead of comparing role strings.
type Capabilities struct {
	ManageRoster   bool
	ManageCheckins bool
	ManageCalendar bool
	ManageGallery  bool
	ManageMerch    bool
	ViewGallery    bool
	// AssignElevated allows granting Board Member and President roles.
	AssignElevated bool
}

// CapabilitiesFor resolves the permission set for a role.
func CapabilitiesFor(role Role) Capabilities {
	switch role {
	case RolePresident:
		return Capabilities{
			ManageRoster:   true,
			ManageCheckins: true,
			ManageCalendar: true,
			ManageGallery:  true,
			ManageMerch:    true,
			ViewGallery:    true,
			AssignElevated: true,
		}
	case RoleBoard:
		return Capabilities{
			ManageRoster:   true,
			ManageCheckins: true,
			ManageCalendar: true,
			ManageGallery:  true,
			ManageMerch:    true,
			ViewGallery:    true,
		}
	case RoleMember:
		return Capabilities{ViewGallery: true}
	default:
		return Capabilities{}
	}
}

var cwidPattern = regexp.MustCompile(`^\d{8}$`)

// ValidCWID reports whether s is exactly 8 digits.
func ValidCWID(s string) bool {
	return cwidPattern.MatchString(s)
}

// FormatName capitalizes the first letter and lowercases the rest,
// matching how the roster editor normalizes names.
func FormatName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Filters select a subset of the roster in memory.
type Filters struct {
	Role           string
	Classification string
	SearchTerm     string
	// SearchType is "basic" or "cwid"; CWID search matches only the leading
	// 8 characters of the query against the stored ID prefix.
	SearchType string
}

// Apply runs the filters over profiles. Filtering is pure and order
// preserving.
func (f Filters) Apply(profiles []Profile) []Profile {
	result := make([]Profile, 0, len(profiles))
	term := strings.ToLower(f.SearchTerm)
	for _, p := range profiles {
		if f.Role != "" && f.Role != "all" && string(p.Role) != f.Role {
			continue
		}
		if f.Classification != "" && f.Classification != "all" && string(p.Classification) != f.Classification {
			continue
		}
		if term != "" {
			if f.SearchType == "cwid" {
				prefix := term
				if len(prefix) > 8 {
					prefix = prefix[:8]
				}
				if !strings.HasPrefix(p.StudentID, prefix) {
					continue
				}
			} else {
				if !strings.Contains(strings.ToLower(p.FirstName), term) &&
					!strings.Contains(strings.ToLower(p.LastName), term) &&
					!strings.Contains(strings.ToLower(p.Email), term) &&
					!strings.Contains(p.StudentID, term) {
					continue
				}
			}
		}
		result = append(result, p)
	}
	return result
}
