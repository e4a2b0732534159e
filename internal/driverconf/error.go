package driverconf

import "errors"

// Error definitions for the driverconf package.
var (
	ErrLayout = errors.New("engine list not found in driver configuration")
)
