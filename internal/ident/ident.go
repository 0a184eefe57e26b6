// Package ident holds the typed identifiers that cross every ingress boundary
// of stagedocs: numeric PMWEB user ids and opaque store reference ids.
package ident

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UserID is a PMWEB numeric user identifier.
type UserID int64

// ParseUserID coerces the string and numeric forms a caller may send into a
// UserID. Fractional and non-positive values are rejected.
func ParseUserID(v any) (UserID, error) {
	switch x := v.(type) {
	case UserID:
		return checkUser(int64(x))
	case int:
		return checkUser(int64(x))
	case int32:
		return checkUser(int64(x))
	case int64:
		return checkUser(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("ident: user id %v is not an integer", x)
		}
		return checkUser(int64(x))
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("ident: user id %q: %w", x.String(), err)
		}
		return checkUser(n)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, fmt.Errorf("ident: user id is required")
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("ident: user id %q is not numeric", x)
		}
		return checkUser(n)
	case nil:
		return 0, fmt.Errorf("ident: user id is required")
	default:
		return 0, fmt.Errorf("ident: unsupported user id type %T", v)
	}
}

func checkUser(n int64) (UserID, error) {
	if n <= 0 {
		return 0, fmt.Errorf("ident: user id must be positive, got %d", n)
	}
	return UserID(n), nil
}

// Int64 returns the raw numeric value.
func (u UserID) Int64() int64 { return int64(u) }

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// Ref is an opaque store reference id (an ObjectID hex string, a UUID, or a
// legacy numeric key rendered as text). The zero value means "absent".
type Ref string

// hexer matches driver object ids that render themselves as hex.
type hexer interface{ Hex() string }

// ParseRef normalizes any stored or requested reference form into a Ref.
func ParseRef(v any) Ref {
	switch x := v.(type) {
	case nil:
		return ""
	case Ref:
		return Ref(strings.TrimSpace(string(x)))
	case string:
		return Ref(strings.TrimSpace(x))
	case *string:
		if x == nil {
			return ""
		}
		return Ref(strings.TrimSpace(*x))
	case hexer:
		return Ref(x.Hex())
	case int:
		return Ref(strconv.Itoa(x))
	case int32:
		return Ref(strconv.FormatInt(int64(x), 10))
	case int64:
		return Ref(strconv.FormatInt(x, 10))
	case uint:
		return Ref(strconv.FormatUint(uint64(x), 10))
	case float64:
		if x == math.Trunc(x) {
			return Ref(strconv.FormatInt(int64(x), 10))
		}
		return Ref(strconv.FormatFloat(x, 'f', -1, 64))
	case fmt.Stringer:
		return Ref(strings.TrimSpace(x.String()))
	default:
		return Ref(strings.TrimSpace(fmt.Sprint(x)))
	}
}

// IsZero reports whether the reference is absent.
func (r Ref) IsZero() bool { return r == "" }

func (r Ref) String() string { return string(r) }

// IsObjectID reports whether r has the 24-hex-digit shape of a document
// store object id.
func (r Ref) IsObjectID() bool {
	if len(r) != 24 {
		return false
	}
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Refs parses a list of raw values, dropping absent ones.
func Refs[T any](vals []T) []Ref {
	out := make([]Ref, 0, len(vals))
	for _, v := range vals {
		if r := ParseRef(v); !r.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

// Strings renders refs as plain strings.
func Strings(refs []Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = string(r)
	}
	return out
}
