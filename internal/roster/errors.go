package roster

import "errors"

var (
	ErrNotFound          = errors.New("profile not found")
	ErrInvalidCWID       = errors.New("student ID must be exactly 8 digits")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidClass      = errors.New("invalid classification")
	ErrEditForbidden     = errors.New("board members cannot edit other board members' or president's profiles")
	ErrAssignForbidden   = errors.New("only the president can assign elevated roles")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrPartialBulkDelete = errors.New("one or more deletes failed")
	ErrBadImportFile     = errors.New("invalid import file")
)
