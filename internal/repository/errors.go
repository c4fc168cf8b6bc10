package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the
// repository. This abstracts away the underlying storage implementation
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrMatchInProgress is returned by CreateInspection when the latest
// inspection for the requested match is still in progress.
var ErrMatchInProgress = errors.New("active inspection exists for match")

// ErrBatteryUsed is returned by CreateInspection when the battery number was
// already recorded on one of the team's previous inspections.
var ErrBatteryUsed = errors.New("battery already used")
