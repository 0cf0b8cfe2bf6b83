// Package state provides a lightweight FSM/session manager for multi-step
// conversations: the intake questionnaires and the admin file-relay session
// ride it. Sessions live in memory only.
package state
