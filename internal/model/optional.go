/*
PURPOSE:
  Tri-state optional value used for every leaf of the canonical schema.
  Distinguishes "engine does not compute this" from "engine computed it but
  had no answer" from an actual value (including an explicit false).

REQUIREMENTS:
  User-specified:
  - The three states must never be collapsed into one.

  Implementation-discovered:
  - JSON: omitted key = Unsupported, null = Unknown, value = Known.
  - `omitzero` (Go 1.24) drives omission through IsZero.
  - An explicit `false` on a non-boolean field is an engine's way of saying
    "no answer" and decodes as Unknown.

ARCHITECTURE INTEGRATION:
  - Used by: canonical.go, fields.go, internal/contract, internal/compare

ERROR HANDLING:
  - UnmarshalJSON returns the decode error for any other type mismatch.

MAINTENANCE:
  - T must stay comparable so values can be grouped by equality.
*/

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// State is the presence state of an optional canonical field.
type State uint8

const (
	// Unsupported means the engine does not compute the field at all.
	Unsupported State = iota
	// Unknown means the engine computes the field but had no answer.
	Unknown
	// Known means the engine returned a value.
	Known
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Known:
		return "known"
	default:
		return "unsupported"
	}
}

// Opt is an optional canonical value. The zero value is Unsupported.
type Opt[T comparable] struct {
	state State
	value T
}

// Some returns a Known value.
func Some[T comparable](v T) Opt[T] {
	return Opt[T]{state: Known, value: v}
}

// None returns an Unknown value.
func None[T comparable]() Opt[T] {
	return Opt[T]{state: Unknown}
}

// State reports the presence state.
func (o Opt[T]) State() State { return o.state }

// Get returns the value and whether it is Known.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.state == Known
}

// IsKnown reports whether a value is present.
func (o Opt[T]) IsKnown() bool { return o.state == Known }

// IsZero reports whether the field is Unsupported. Used by `omitzero`.
func (o Opt[T]) IsZero() bool { return o.state == Unsupported }

// String renders a Known value in its canonical comparison form.
// Unknown and Unsupported render as the empty string.
func (o Opt[T]) String() string {
	if o.state != Known {
		return ""
	}
	switch v := any(o.value).(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.state != Known {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = None[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		if _, isBool := any(v).(bool); !isBool && bytes.Equal(data, []byte("false")) {
			*o = None[T]()
			return nil
		}
		return err
	}
	*o = Some(v)
	return nil
}
