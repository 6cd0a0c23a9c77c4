// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package repository

import "errors"

// Error kinds reported by the writer. Callers match on these with errors.Is
// rather than inspecting messages.
var (
	// ErrValidation indicates the metadata record failed schema validation.
	// No filesystem mutation has occurred.
	ErrValidation = errors.New("metadata validation failed")

	// ErrWrite indicates an I/O failure. Partial state is limited to orphan
	// temporary files; a final artifact is never left half-written.
	ErrWrite = errors.New("repository write failed")

	// ErrPath indicates an input that resolves outside the configured base
	// directory, or contains traversal sequences or invalid characters.
	ErrPath = errors.New("path outside repository base")

	// ErrConfigRequired is returned when a writer is constructed without a config.
	ErrConfigRequired = errors.New("repository config required")
)

// Kind tags an Error with its taxonomy class.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindWrite
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindWrite:
		return "write"
	case KindPath:
		return "path"
	}
	return "unknown"
}

// Error is the structured error returned by the writer. It carries a kind,
// a human-readable message, and an optional recovery hint.
type Error struct {
	Kind Kind
	Msg  string
	Hint string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel, so errors.Is(err, ErrPath) works regardless
// of the wrapped cause.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrWrite:
		return e.Kind == KindWrite
	case ErrPath:
		return e.Kind == KindPath
	}
	return false
}

func validationError(msg, hint string, err error) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Hint: hint, Err: err}
}

func writeError(msg, hint string, err error) *Error {
	return &Error{Kind: KindWrite, Msg: msg, Hint: hint, Err: err}
}

func pathError(msg, hint string, err error) *Error {
	return &Error{Kind: KindPath, Msg: msg, Hint: hint, Err: err}
}
