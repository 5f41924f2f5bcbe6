// Package flock provides exclusive, non-blocking file locks.
//
// The migrate command holds one lock per site so two harness runs never
// drive the same migration form at the same time:
//
//	lock, err := flock.Acquire(path)
//	if err != nil {
//	    // another run owns the site
//	}
//	defer lock.Release()
package flock
