package suggest

import (
	"errors"
	"fmt"
)

// ErrUnknownPolicy is returned when a policy name does not match a known policy.
var ErrUnknownPolicy = errors.New("unknown priority policy")

// Policy names accepted by NewIndex and the config file.
const (
	PolicyFrequency = "frequency"
	PolicyRecency   = "recency"
)

// Clock is the logical clock owned by a single index.
// It only moves forward.
type Clock struct {
	now uint64
}

// Tick advances the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	c.now++
	return c.now
}

// Now returns the current clock value without advancing it.
func (c *Clock) Now() uint64 {
	return c.now
}

// Policy decides how a terminal's priority changes when a word is confirmed.
// Implementations are stateless; any shared state lives in the index's Clock.
type Policy interface {
	Name() string
	Touch(priority uint64, clock *Clock) uint64
}

// Frequency ranks words by how many times they were confirmed.
type Frequency struct{}

func (Frequency) Name() string { return PolicyFrequency }

func (Frequency) Touch(priority uint64, _ *Clock) uint64 {
	return priority + 1
}

// Recency ranks words by when they were last confirmed, using the index-wide clock.
type Recency struct{}

func (Recency) Name() string { return PolicyRecency }

func (Recency) Touch(_ uint64, clock *Clock) uint64 {
	return clock.Tick()
}

// ParsePolicy validates a policy name.
func ParsePolicy(name string) (string, error) {
	switch name {
	case PolicyFrequency, PolicyRecency:
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}
