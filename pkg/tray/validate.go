package tray

import "fmt"

// ValidationSeverity indicates whether a finding blocks export or is merely
// informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string             // offending setting, empty if tray-wide
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the tray settings against a printer build volume and
// returns all findings. An empty slice means the tray is printable as one
// piece. Validate never mutates s.
func Validate(s Settings, volume Extents) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateWall(s)...)
	errs = append(errs, validateDimensions(s)...)
	errs = append(errs, validateBuildVolume(s.Extents(), volume)...)
	errs = append(errs, validateCompartments(s)...)
	errs = append(errs, validateCutout(s.Cutout)...)
	return errs
}

// ValidateForSplit is Validate without the build volume check, for trays
// that will be divided by the splitter before printing.
func ValidateForSplit(s Settings) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateWall(s)...)
	errs = append(errs, validateDimensions(s)...)
	errs = append(errs, validateCompartments(s)...)
	errs = append(errs, validateCutout(s.Cutout)...)
	return errs
}

// ValidateParts checks the parts of a split against the build volume.
// Halving the dominant axis does not always shrink the axis that was too
// large, so a split can leave an oversized part behind; each such part
// gets a warning. A single part means nothing was split, and a tray that
// does not fit is then the same error Validate reports.
func ValidateParts(parts []Extents, volume Extents) []ValidationError {
	if len(parts) == 1 {
		return validateBuildVolume(parts[0], volume)
	}
	var warnings []ValidationError
	for i, p := range parts {
		if p.FitsWithin(volume) {
			continue
		}
		warnings = append(warnings, ValidationError{
			Field:    fmt.Sprintf("part %d", i+1),
			Message:  fmt.Sprintf("part %s still exceeds build volume %s after split", p, volume),
			Severity: SeverityWarning,
		})
	}
	return warnings
}

// ValidateBoardgame checks the boardgame mode settings.
func ValidateBoardgame(b BoardgameSettings) []ValidationError {
	var errs []ValidationError
	if _, _, err := b.CardDimensions(); err != nil {
		errs = append(errs, ValidationError{
			Field:    "card_size",
			Message:  err.Error(),
			Severity: SeverityError,
		})
	}
	if b.Quantity < 0 {
		errs = append(errs, ValidationError{
			Field:    "quantity",
			Message:  "quantity must not be negative",
			Severity: SeverityError,
		})
	}
	if b.TokenWells < 0 {
		errs = append(errs, ValidationError{
			Field:    "token_wells",
			Message:  "token wells must not be negative",
			Severity: SeverityError,
		})
	}
	return errs
}

func validateWall(s Settings) []ValidationError {
	if s.Wall < MinWall {
		return []ValidationError{{
			Field:    "wall",
			Message:  fmt.Sprintf("wall thickness < %gmm", MinWall),
			Severity: SeverityError,
		}}
	}
	return nil
}

func validateDimensions(s Settings) []ValidationError {
	if !s.Extents().Positive() {
		return []ValidationError{{
			Message:  "dimensions must be positive",
			Severity: SeverityError,
		}}
	}
	if 2*s.Wall >= s.Length || 2*s.Wall >= s.Width || s.Wall >= s.Height {
		return []ValidationError{{
			Field:    "wall",
			Message:  fmt.Sprintf("wall thickness %gmm leaves no room inside a %s tray", s.Wall, s.Extents()),
			Severity: SeverityError,
		}}
	}
	return nil
}

func validateBuildVolume(e, volume Extents) []ValidationError {
	if e.FitsWithin(volume) {
		return nil
	}
	return []ValidationError{{
		Message:  fmt.Sprintf("tray %s exceeds build volume %s", e, volume),
		Severity: SeverityError,
	}}
}

func validateCompartments(s Settings) []ValidationError {
	var errs []ValidationError
	ext := s.Extents()
	for i, c := range s.Compartments {
		field := fmt.Sprintf("compartments[%d]", i)
		if c.Label != "" {
			field = fmt.Sprintf("compartments[%d] (%s)", i, c.Label)
		}
		if c.Width <= 0 || c.Depth <= 0 || c.Height < 0 {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  "compartment size must be positive",
				Severity: SeverityError,
			})
			continue
		}
		if !c.Shape.Valid() {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  fmt.Sprintf("unknown shape %q", c.Shape),
				Severity: SeverityError,
			})
		}
		if !c.FitsIn(ext) {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  fmt.Sprintf("compartment lies outside the %s tray", ext),
				Severity: SeverityError,
			})
		}
		// A pocket is never cut below the floor, so one that ends at or
		// under it cuts nothing.
		if c.Height > 0 && c.Z+c.Height <= s.Wall {
			errs = append(errs, ValidationError{
				Field:    field,
				Message:  fmt.Sprintf("compartment lies entirely inside the %gmm floor", s.Wall),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validateCutout(p CutoutPattern) []ValidationError {
	if p.Density < 0 || p.Density > 1 {
		return []ValidationError{{
			Field:    "cutout.density",
			Message:  fmt.Sprintf("density %g out of range [0, 1]", p.Density),
			Severity: SeverityError,
		}}
	}
	return nil
}
