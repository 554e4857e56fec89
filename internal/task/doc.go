// Package task parses, serializes, and stores spaced-repetition tasks.
//
// A task file holds one task per line:
//
//	guitar practice @2022-10-01 #3
//	read chapter 4 #1
//
// Tokens are separated by single spaces:
//   - a token starting with "@" is the due date (YYYY-MM-DD); it is absent
//     when the task is unscheduled
//   - a token starting with "#" is the interval in days; it is required
//   - every other token is part of the name, rejoined with single spaces
//
// # Parsing
//
// A line is first lexed into Name, Date, and Interval tokens, then validated:
// at most one Date token and exactly one Interval token are allowed. Each
// violation has its own sentinel error (ErrDuplicateDate, ErrDuplicateInterval,
// ErrMissingInterval), wrapped in a *ParseError that carries the line number.
//
// # File Semantics
//
//   - Loading a missing file creates it empty
//   - Empty lines are skipped
//   - A malformed line fails the whole load; no partial sequence is returned
//   - Saving rewrites the whole file through a temporary file and rename
package task
