package auth

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Identity is the caller as asserted by a verified token.
type Identity struct {
	UserID  int64
	IsAdmin bool

	hasUserID bool
}

// NewIdentity builds an Identity for a known user id.
func NewIdentity(userID int64, isAdmin bool) Identity {
	return Identity{UserID: userID, IsAdmin: isAdmin, hasUserID: true}
}

// CanListUsers reports whether the caller may list every account.
func (i Identity) CanListUsers() bool {
	return i.IsAdmin
}

// CanActOn reports whether the caller may read, update or delete the account
// named by target, the raw id taken from the request path. Admins may act on
// any account; everyone else only on their own. The target is parsed to an
// integer before comparison, so "5", " 5" and "5.0" all name user 5.
func (i Identity) CanActOn(target string) bool {
	if i.IsAdmin {
		return true
	}
	id, ok := ParseID(target)
	return ok && i.hasUserID && i.UserID == id
}

// ParseID parses a user id the way a numeric comparison would: surrounding
// whitespace is ignored, integral floats are accepted and so are unsigned
// hex, octal and binary literals ("0x5", "0o5", "0b101").
func ParseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}
	if hasRadixPrefix(raw) {
		id, err := strconv.ParseInt(raw, 0, 64)
		return id, err == nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return floatID(f)
}

// hasRadixPrefix reports an unsigned 0x, 0o or 0b literal. Underscores are
// not digit separators here.
func hasRadixPrefix(raw string) bool {
	if len(raw) < 3 || raw[0] != '0' || strings.Contains(raw, "_") {
		return false
	}
	switch raw[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}

func floatID(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// claimID reads a user_id claim, which may be a JSON number or a numeric string.
func claimID(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return floatID(x)
	case json.Number:
		return ParseID(x.String())
	case string:
		return ParseID(x)
	default:
		return 0, false
	}
}

// looseTrue reports whether a claim compares equal to true numerically:
// true, 1 and "1" qualify.
func looseTrue(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x == 1
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil && f == 1
	default:
		return false
	}
}
