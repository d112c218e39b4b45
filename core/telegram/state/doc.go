// Package state keeps per-user conversation sessions in process memory.
// Sessions are typed records with an explicit step; unfinished ones expire.
package state
