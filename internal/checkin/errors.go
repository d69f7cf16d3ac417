package checkin

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrAlreadyCheckedIn = errors.New("this user is already checked in for this event")
	ErrPermissionDenied = errors.New("only board members and presidents can manage check-ins")
	ErrNameRequired     = errors.New("name is required")
)

// UnknownStudentError signals that no profile matched the candidate CWID;
// the operator is offered the new-student form pre-filled with it.
type UnknownStudentError struct {
	CWID string
}

func (e *UnknownStudentError) Error() string {
	return fmt.Sprintf("no student found for CWID %s", e.CWID)
}
