// Package secret holds the memory discipline for sensitive values: master
// passwords, derived keys and credential passwords.
//
// A secret lives in a Buffer backed by locked, guard-paged memory. Every
// function that accepts a *Buffer documents whether it borrows it (must not
// keep it past the call) or takes ownership (and will Destroy it). Copies
// handed out for display or editing are registered with a Tracker so that a
// single Wipe releases all of them.
package secret
