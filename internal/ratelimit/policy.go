package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Policy is a parsed "<count>/<window>" limit, e.g. "5/minute".
type Policy struct {
	Limit  int
	Window time.Duration
}

// ParsePolicy parses a policy string. The window may be written as
// second, minute, hour or day, singular or plural.
func ParsePolicy(raw string) (Policy, error) {
	count, unit, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return Policy{}, fmt.Errorf("invalid rate limit %q: expected <count>/<window>", raw)
	}

	limit, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || limit <= 0 {
		return Policy{}, fmt.Errorf("invalid rate limit %q: count must be a positive integer", raw)
	}

	var window time.Duration
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), "s") {
	case "second":
		window = time.Second
	case "minute":
		window = time.Minute
	case "hour":
		window = time.Hour
	case "day":
		window = 24 * time.Hour
	default:
		return Policy{}, fmt.Errorf("invalid rate limit %q: unknown window %q", raw, unit)
	}

	return Policy{Limit: limit, Window: window}, nil
}

// MustParsePolicy is ParsePolicy for values already validated at startup.
func MustParsePolicy(raw string) Policy {
	p, err := ParsePolicy(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Policy) String() string {
	return fmt.Sprintf("%d/%s", p.Limit, p.Window)
}
