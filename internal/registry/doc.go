// Package registry is the authoritative in-memory store of rooms and their
// players. It enforces unique IDs and case-insensitive unique player names
// within a room, and performs no I/O.
//
// Mutations of one room are serialized by that room's lock, so the name
// check and the append of AddPlayer happen as a single step. Operations on
// different rooms proceed concurrently. Every value handed out is a copy;
// callers never share memory with the registry.
package registry
