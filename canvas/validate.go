package canvas

import (
	"regexp"

	"canvas-earth/core"
)

// Field bounds, matching what callers are told to stay within. The transport
// layer pre-checks these too; they are re-enforced here so the core never
// trusts its callers.
const (
	maxCoordinate = 1_000_000
	minFontSize   = 8
	maxFontSize   = 128
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func validateCreate(p *CreateParams) error {
	if p.ObjectType == "" {
		return &core.ValidationError{Field: "objectType", Reason: "is required"}
	}
	if p.PositionX == nil {
		return &core.ValidationError{Field: "positionX", Reason: "is required"}
	}
	if p.PositionY == nil {
		return &core.ValidationError{Field: "positionY", Reason: "is required"}
	}
	if p.Width == nil {
		return &core.ValidationError{Field: "width", Reason: "is required"}
	}
	if p.Height == nil {
		return &core.ValidationError{Field: "height", Reason: "is required"}
	}

	if err := checkPosition("positionX", *p.PositionX); err != nil {
		return err
	}
	if err := checkPosition("positionY", *p.PositionY); err != nil {
		return err
	}
	if *p.Width <= 0 {
		return &core.ValidationError{Field: "width", Reason: "must be positive"}
	}
	if *p.Height <= 0 {
		return &core.ValidationError{Field: "height", Reason: "must be positive"}
	}
	if p.ZIndex != nil && *p.ZIndex < 0 {
		return &core.ValidationError{Field: "zIndex", Reason: "cannot be negative"}
	}
	if p.FontSize != 0 {
		if err := checkFontSize(p.FontSize); err != nil {
			return err
		}
	}
	if p.FontWeight != "" {
		if err := checkFontWeight(p.FontWeight); err != nil {
			return err
		}
	}
	if p.TextColor != "" {
		if err := checkTextColor(p.TextColor); err != nil {
			return err
		}
	}
	return nil
}

// validatePatch checks only the fields the patch actually carries. Positive
// width/height is enforced here when provided, never against the stored
// record: creation-time invariants are not re-checked on update.
func validatePatch(p *core.ObjectPatch) error {
	if p.PositionX != nil {
		if err := checkPosition("positionX", *p.PositionX); err != nil {
			return err
		}
	}
	if p.PositionY != nil {
		if err := checkPosition("positionY", *p.PositionY); err != nil {
			return err
		}
	}
	if p.Width != nil && *p.Width <= 0 {
		return &core.ValidationError{Field: "width", Reason: "must be positive"}
	}
	if p.Height != nil && *p.Height <= 0 {
		return &core.ValidationError{Field: "height", Reason: "must be positive"}
	}
	if p.ZIndex != nil && *p.ZIndex < 0 {
		return &core.ValidationError{Field: "zIndex", Reason: "cannot be negative"}
	}
	if p.FontSize != nil {
		if err := checkFontSize(*p.FontSize); err != nil {
			return err
		}
	}
	if p.FontWeight != nil {
		if err := checkFontWeight(*p.FontWeight); err != nil {
			return err
		}
	}
	if p.TextColor != nil {
		if err := checkTextColor(*p.TextColor); err != nil {
			return err
		}
	}
	return nil
}

func checkPosition(field string, v float64) error {
	if v < -maxCoordinate || v > maxCoordinate {
		return &core.ValidationError{Field: field, Reason: "out of bounds (range: -1,000,000 to 1,000,000)"}
	}
	return nil
}

func checkFontSize(v int) error {
	if v < minFontSize || v > maxFontSize {
		return &core.ValidationError{Field: "fontSize", Reason: "must be between 8 and 128"}
	}
	return nil
}

func checkFontWeight(v string) error {
	if v != "normal" && v != "bold" {
		return &core.ValidationError{Field: "fontWeight", Reason: "must be 'normal' or 'bold'"}
	}
	return nil
}

func checkTextColor(v string) error {
	if !hexColorPattern.MatchString(v) {
		return &core.ValidationError{Field: "textColor", Reason: "must be in hex format (#RRGGBB)"}
	}
	return nil
}
