package health

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrNoSample is returned when a listing carries no "<seconds>s)" figure.
var ErrNoSample = errors.New("no hook time in listing")

// hookTimePattern matches the elapsed time printed as "(... 0.015s)".
var hookTimePattern = regexp.MustCompile(`([0-9]*\.?[0-9]+)s\)`)

// Extract returns the first hook time in body, in seconds.
func Extract(body string) (float64, error) {
	m := hookTimePattern.FindStringSubmatch(body)
	if m == nil {
		return 0, ErrNoSample
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse hook time %q: %w", m[1], err)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("hook time %q out of range", m[1])
	}
	return v, nil
}
