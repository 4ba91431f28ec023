package models

import "fmt"

// ImageType identifies the kind of artifact stored for a snapshot
type ImageType string

const (
	// ImageReference is the accepted ground truth
	ImageReference ImageType = "Reference"
	// ImageDiff is the overlay visualising a mismatch
	ImageDiff ImageType = "Diff"
	// ImageFailure is the rendered bitmap that did not match
	ImageFailure ImageType = "Failure"
)

// ImageTypes lists every artifact kind in directory order
var ImageTypes = []ImageType{ImageReference, ImageDiff, ImageFailure}

// DirectoryName returns the path segment used for this image type
func (t ImageType) DirectoryName() string {
	return string(t)
}

// Mode selects between recording references and testing against them
type Mode string

const (
	// ModeRecord writes new reference images
	ModeRecord Mode = "record"
	// ModeTest compares renders against stored references
	ModeTest Mode = "test"
)

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch s {
	case "record", "Record", "RECORD":
		return ModeRecord, nil
	case "test", "Test", "TEST", "":
		return ModeTest, nil
	default:
		return "", fmt.Errorf("invalid mode %q (use: record, test)", s)
	}
}

// MissingReferencePolicy decides what happens when a test run finds no reference image
type MissingReferencePolicy string

const (
	// RecordAndFail writes the reference and fails the assertion
	RecordAndFail MissingReferencePolicy = "record-and-fail"
	// RecordAndPass writes the reference and lets the assertion pass
	RecordAndPass MissingReferencePolicy = "record-and-pass"
	// FailMissing fails without writing anything
	FailMissing MissingReferencePolicy = "fail"
)

// Valid reports whether the policy is one of the known values
func (p MissingReferencePolicy) Valid() bool {
	switch p {
	case RecordAndFail, RecordAndPass, FailMissing:
		return true
	}
	return false
}

// Identity names the test that made a snapshot assertion
type Identity struct {
	// Module is the short package name, used as the snapshot directory prefix
	Module string
	// Package is the full import path of the package under test
	Package string
	// Group is the class analogue: the test source file without its _test.go suffix
	Group string
	// Function is the full test name, subtests included
	Function string
	// File and Line locate the assertion in source
	File string
	Line int
}

// SnapshotConfig identifies one snapshot assertion.
// It is built per call and never persisted.
type SnapshotConfig struct {
	Identity Identity
	Scale    Scale
	Layout   LayoutStyle
	Suffix   string
}

// Validate checks if the configuration can produce a path
func (c *SnapshotConfig) Validate() error {
	if c.Identity.Module == "" {
		return &ValidationError{Field: "Module", Message: "module is required"}
	}
	if c.Identity.Group == "" {
		return &ValidationError{Field: "Group", Message: "group is required"}
	}
	if c.Identity.Function == "" {
		return &ValidationError{Field: "Function", Message: "function is required"}
	}
	if c.Scale.explicit && c.Scale.factor <= 0 {
		return &ValidationError{Field: "Scale", Message: "explicit scale must be positive"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
