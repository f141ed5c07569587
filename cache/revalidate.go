package cache

import (
	"fmt"
	"time"
)

type revalidateMode uint8

const (
	revalidateUnset revalidateMode = iota
	revalidateNever
	revalidateAfter
)

// Revalidate is a tri-state freshness policy: unset (the zero value), never
// (a cached entry is never considered stale), or a numeric window after which
// an entry becomes stale.
type Revalidate struct {
	mode   revalidateMode
	window time.Duration
}

// RevalidateAfter returns a policy that marks entries stale once d has
// elapsed since they were stored.
func RevalidateAfter(d time.Duration) Revalidate {
	return Revalidate{mode: revalidateAfter, window: d}
}

// RevalidateNever returns a policy under which entries never go stale.
func RevalidateNever() Revalidate {
	return Revalidate{mode: revalidateNever}
}

// IsZero reports whether the policy is unset.
func (r Revalidate) IsZero() bool {
	return r.mode == revalidateUnset
}

// Never reports whether the policy is "never revalidate".
func (r Revalidate) Never() bool {
	return r.mode == revalidateNever
}

// Window returns the numeric freshness window and whether one is set.
func (r Revalidate) Window() (time.Duration, bool) {
	if r.mode != revalidateAfter {
		return 0, false
	}
	return r.window, true
}

func (r Revalidate) String() string {
	switch r.mode {
	case revalidateNever:
		return "never"
	case revalidateAfter:
		return r.window.String()
	default:
		return "unset"
	}
}

var _ fmt.Stringer = Revalidate{}
