package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Scale is the pixel density used when rasterising a view.
// The zero value is the native scale of the screen.
type Scale struct {
	explicit bool
	factor   float64
}

// Native returns the scale that follows the screen's native density
func Native() Scale {
	return Scale{}
}

// Explicit returns a fixed scale factor
func Explicit(factor float64) Scale {
	return Scale{explicit: true, factor: factor}
}

// IsNative reports whether the scale follows the screen
func (s Scale) IsNative() bool {
	return !s.explicit
}

// ExplicitOrScreenNativeValue resolves the scale against the screen's native density.
// This value appears in filenames and is used to rebuild a decoded bitmap's point size.
func (s Scale) ExplicitOrScreenNativeValue(native float64) float64 {
	if s.explicit {
		return s.factor
	}
	return native
}

// ExplicitOrContextValue returns the factor handed to a drawing context,
// where zero asks the context to use the screen's native density.
func (s Scale) ExplicitOrContextValue() float64 {
	if s.explicit {
		return s.factor
	}
	return 0
}

// String returns "native" or the explicit factor
func (s Scale) String() string {
	if !s.explicit {
		return "native"
	}
	return FormatFloat(s.factor)
}

// ParseScale parses "native" or a positive factor
func ParseScale(s string) (Scale, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "native" {
		return Native(), nil
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
	if err != nil {
		return Scale{}, fmt.Errorf("invalid scale %q: %w", s, err)
	}
	if f <= 0 {
		return Scale{}, fmt.Errorf("invalid scale %q: must be positive", s)
	}
	return Explicit(f), nil
}
