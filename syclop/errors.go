package syclop

import "errors"

// ErrNoValidStart is returned by Solve when no start state locates to a valid
// region.
func ErrNoValidStart() error {
	return errors.New("syclop: no valid start states")
}

// ErrNoValidGoal is returned by Solve when a goal state cannot be sampled.
func ErrNoValidGoal() error {
	return errors.New("syclop: unable to sample a valid goal state")
}

// ErrNotConfigured reports a driver that has not been set up. Solve does not
// return it: Solve sets up the region estimates itself on its first call.
func ErrNotConfigured() error {
	return errors.New("syclop: driver has not been set up")
}
