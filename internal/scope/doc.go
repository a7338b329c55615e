// Package scope records selected signal values into a caller-owned byte
// buffer, like a storage oscilloscope.
//
// Lifecycle:
//
//	Init ──Setup──▶ Ready ──Update──▶ Sampling ──buffer full──▶ Sampled
//
// Init is the disabled state. The first Update after Setup starts sampling
// without losing that tick. Every prediv-th Update writes one row: all active
// integer channels, then all active float channels, each 4 bytes wide in the
// configured byte order. A row is written whole or not at all.
//
// Signals are first enlisted into a bounded "known" registry, then Setup
// selects the channels to sample from a comma-separated name list. With name
// support disabled the application registers active channels directly.
//
// The scope never reads or writes past the buffer it was given and never
// reallocates it.
package scope
