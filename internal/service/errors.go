package service

import "errors"

var (
	ErrClassClosed          = errors.New("class is closed")
	ErrClassNotClosed       = errors.New("class is not closed")
	ErrStudentNotActive     = errors.New("student is not active")
	ErrNotSuspended         = errors.New("student is not suspended")
	ErrRestartBeforeSuspend = errors.New("restart date is before the suspend date")
	ErrInvalidPeriod        = errors.New("valid_to is before valid_from")
	ErrPortalNotFound       = errors.New("no student matches this code and phone")
	ErrInvalidSetting       = errors.New("invalid setting value")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnknownClass         = errors.New("class does not exist")
	ErrUnknownStudent       = errors.New("student does not exist")
	ErrStudentInactive      = errors.New("student is already inactive")
	ErrAlreadyProrated      = errors.New("payment has already been prorated")
)
