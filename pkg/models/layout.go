package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LayoutKind identifies which dimensions of a view are pinned during verification
type LayoutKind string

const (
	// KindDynamicWidth pins the height and lets the width size itself
	KindDynamicWidth LayoutKind = "dynamic_width"
	// KindDynamicHeight pins the width and lets the height size itself
	KindDynamicHeight LayoutKind = "dynamic_height"
	// KindDynamicWidthAndHeight pins neither dimension
	KindDynamicWidthAndHeight LayoutKind = "dynamic_width_height"
	// KindFixed pins both dimensions
	KindFixed LayoutKind = "fixed"
)

// LayoutStyle describes the sizing constraints applied to a view before it is rendered.
// Construct values with DynamicWidth, DynamicHeight, DynamicWidthAndHeight or Fixed.
type LayoutStyle struct {
	kind   LayoutKind
	width  float64
	height float64
}

// DynamicWidth pins the height and lets the width resolve from content
func DynamicWidth(fixedHeight float64) LayoutStyle {
	return LayoutStyle{kind: KindDynamicWidth, height: fixedHeight}
}

// DynamicHeight pins the width and lets the height resolve from content
func DynamicHeight(fixedWidth float64) LayoutStyle {
	return LayoutStyle{kind: KindDynamicHeight, width: fixedWidth}
}

// DynamicWidthAndHeight lets both dimensions resolve from content
func DynamicWidthAndHeight() LayoutStyle {
	return LayoutStyle{kind: KindDynamicWidthAndHeight}
}

// Fixed pins both dimensions
func Fixed(width, height float64) LayoutStyle {
	return LayoutStyle{kind: KindFixed, width: width, height: height}
}

// Kind returns the variant of the style
func (s LayoutStyle) Kind() LayoutKind {
	if s.kind == "" {
		return KindDynamicWidthAndHeight
	}
	return s.kind
}

// Width returns the pinned width and whether the style pins it
func (s LayoutStyle) Width() (float64, bool) {
	switch s.Kind() {
	case KindDynamicHeight, KindFixed:
		return s.width, true
	default:
		return 0, false
	}
}

// Height returns the pinned height and whether the style pins it
func (s LayoutStyle) Height() (float64, bool) {
	switch s.Kind() {
	case KindDynamicWidth, KindFixed:
		return s.height, true
	default:
		return 0, false
	}
}

// FileValue returns the filename-safe encoding of the style.
// Paths depend on this string byte for byte.
func (s LayoutStyle) FileValue() string {
	switch s.Kind() {
	case KindDynamicWidth:
		return "dw_" + FormatFloat(s.height)
	case KindDynamicHeight:
		return FormatFloat(s.width) + "_dh"
	case KindFixed:
		return FormatFloat(s.width) + "_" + FormatFloat(s.height)
	default:
		return "dw_dh"
	}
}

// String returns a human readable description of the style
func (s LayoutStyle) String() string {
	switch s.Kind() {
	case KindDynamicWidth:
		return fmt.Sprintf("dynamicWidth(fixedHeight: %s)", FormatFloat(s.height))
	case KindDynamicHeight:
		return fmt.Sprintf("dynamicHeight(fixedWidth: %s)", FormatFloat(s.width))
	case KindFixed:
		return fmt.Sprintf("fixed(width: %s, height: %s)", FormatFloat(s.width), FormatFloat(s.height))
	default:
		return "dynamicWidthHeight"
	}
}

// ParseLayoutStyle parses the FileValue encoding back into a LayoutStyle
func ParseLayoutStyle(s string) (LayoutStyle, error) {
	if s == "dw_dh" {
		return DynamicWidthAndHeight(), nil
	}

	left, right, ok := strings.Cut(s, "_")
	if !ok {
		return LayoutStyle{}, fmt.Errorf("invalid layout style: %q", s)
	}

	switch {
	case left == "dw":
		h, err := strconv.ParseFloat(right, 64)
		if err != nil {
			return LayoutStyle{}, fmt.Errorf("invalid layout height %q: %w", right, err)
		}
		return DynamicWidth(h), nil
	case right == "dh":
		w, err := strconv.ParseFloat(left, 64)
		if err != nil {
			return LayoutStyle{}, fmt.Errorf("invalid layout width %q: %w", left, err)
		}
		return DynamicHeight(w), nil
	default:
		w, err := strconv.ParseFloat(left, 64)
		if err != nil {
			return LayoutStyle{}, fmt.Errorf("invalid layout width %q: %w", left, err)
		}
		h, err := strconv.ParseFloat(right, 64)
		if err != nil {
			return LayoutStyle{}, fmt.Errorf("invalid layout height %q: %w", right, err)
		}
		return Fixed(w, h), nil
	}
}

// FormatFloat renders a float in its shortest round-trip form, always keeping a
// fractional part for integral values (10 becomes "10.0").
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
