package tray

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Extents
// ---------------------------------------------------------------------------

func TestDominantAxis(t *testing.T) {
	tests := []struct {
		name string
		ext  Extents
		want Axis
	}{
		{"length longest", NewExtents(300, 100, 100), AxisLength},
		{"width longest", NewExtents(100, 300, 100), AxisWidth},
		{"height longest", NewExtents(100, 100, 300), AxisHeight},
		{"all equal picks length", NewExtents(100, 100, 100), AxisLength},
		{"length ties width", NewExtents(200, 200, 100), AxisLength},
		{"width ties height", NewExtents(100, 200, 200), AxisWidth},
		{"length ties height", NewExtents(200, 100, 200), AxisLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ext.DominantAxis(); got != tt.want {
				t.Errorf("DominantAxis(%s) = %s, want %s", tt.ext, got, tt.want)
			}
		})
	}
}

func TestExtentsPositive(t *testing.T) {
	if !NewExtents(1, 2, 3).Positive() {
		t.Error("Positive() = false for (1,2,3)")
	}
	if NewExtents(0, 2, 3).Positive() {
		t.Error("Positive() = true for zero length")
	}
	if NewExtents(1, -2, 3).Positive() {
		t.Error("Positive() = true for negative width")
	}
}

func TestExtentsWithDoesNotMutate(t *testing.T) {
	e := NewExtents(10, 20, 30)
	h := e.With(AxisWidth, 5)
	if e.Width != 20 {
		t.Errorf("original width = %g, want 20", e.Width)
	}
	if h.Width != 5 || h.Length != 10 || h.Height != 30 {
		t.Errorf("With() = %s, want 10x5x30", h)
	}
	if h.Get(AxisWidth) != 5 {
		t.Errorf("Get(width) = %g, want 5", h.Get(AxisWidth))
	}
}

// ---------------------------------------------------------------------------
// BoxModel, compartments, cutout
// ---------------------------------------------------------------------------

func TestBoxModelDimensions(t *testing.T) {
	box := NewBoxModel()
	l, w, h := box.Dimensions()
	if l != 100 || w != 100 || h != 50 {
		t.Errorf("default dimensions = (%g, %g, %g), want (100, 100, 50)", l, w, h)
	}
	box.SetDimensions(10, 20, 30)
	l, w, h = box.Dimensions()
	if l != 10 || w != 20 || h != 30 {
		t.Errorf("Dimensions() = (%g, %g, %g), want (10, 20, 30)", l, w, h)
	}
}

func TestCompartmentSystem(t *testing.T) {
	cs := NewCompartmentSystem(NewBoxModel())
	cs.Add(0, 0, 0, 10, 10, 10)
	if got := len(cs.List()); got != 1 {
		t.Fatalf("len(List()) = %d, want 1", got)
	}

	// List returns a copy.
	list := cs.List()
	list[0].Width = 99
	if cs.List()[0].Width != 10 {
		t.Error("mutating List() result changed the system")
	}

	cs.Clear()
	if cs.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", cs.Len())
	}
}

func TestCutoutEnableDisable(t *testing.T) {
	p := NewCutoutPattern()
	if p.IsEnabled() {
		t.Fatal("new pattern is enabled")
	}
	p.Enable()
	if !p.IsEnabled() {
		t.Fatal("Enable() did not enable")
	}
	if p.Density != DefaultCutoutDensity {
		t.Errorf("density = %g, want %g", p.Density, DefaultCutoutDensity)
	}
	p.Disable()
	if p.IsEnabled() {
		t.Fatal("Disable() did not disable")
	}
	if err := p.EnableWithDensity(0.8); err != nil {
		t.Fatalf("EnableWithDensity(0.8) error = %v", err)
	}
	if !p.IsEnabled() || p.Density != 0.8 {
		t.Errorf("pattern = %+v, want enabled with density 0.8", p)
	}
	if err := p.EnableWithDensity(1.5); err == nil {
		t.Error("EnableWithDensity(1.5) error = nil, want range error")
	}
}

func TestCardDimensions(t *testing.T) {
	tests := []struct {
		size    string
		w, h    float64
		wantErr bool
	}{
		{"63.5x88", 63.5, 88, false},
		{" 41 X 63 ", 41, 63, false},
		{"63.5", 0, 0, true},
		{"axb", 0, 0, true},
		{"0x88", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			w, h, err := BoardgameSettings{CardSize: tt.size}.CardDimensions()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CardDimensions(%q) error = nil, want error", tt.size)
				}
				return
			}
			if err != nil {
				t.Fatalf("CardDimensions(%q) error = %v", tt.size, err)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("CardDimensions(%q) = (%g, %g), want (%g, %g)", tt.size, w, h, tt.w, tt.h)
			}
		})
	}
}

func TestSettingsCloneIsDeep(t *testing.T) {
	s := DefaultSettings()
	s.Compartments = append(s.Compartments, Compartment{Width: 10, Depth: 10})
	c := s.Clone()
	c.Compartments[0].Width = 50
	if s.Compartments[0].Width != 10 {
		t.Error("Clone shares compartment storage")
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// hasFinding returns true if findings contains one of severity sev whose
// message contains substr.
func hasFinding(findings []ValidationError, sev ValidationSeverity, substr string) bool {
	for _, f := range findings {
		if f.Severity == sev && strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateDefaultsClean(t *testing.T) {
	if errs := Validate(DefaultSettings(), DefaultBuildVolume); len(errs) != 0 {
		t.Errorf("Validate(defaults) = %v, want no findings", errs)
	}
}

func TestValidateThinWall(t *testing.T) {
	s := DefaultSettings()
	s.Wall = 0.5
	errs := Validate(s, DefaultBuildVolume)
	if !hasFinding(errs, SeverityError, "wall thickness < 0.8mm") {
		t.Errorf("expected thin wall error, got %v", errs)
	}
}

func TestValidateNonPositiveDimensions(t *testing.T) {
	s := DefaultSettings()
	s.Height = 0
	errs := Validate(s, DefaultBuildVolume)
	if !hasFinding(errs, SeverityError, "dimensions must be positive") {
		t.Errorf("expected dimension error, got %v", errs)
	}
}

func TestValidateBuildVolume(t *testing.T) {
	s := DefaultSettings()
	s.Length = 221
	errs := Validate(s, DefaultBuildVolume)
	if !hasFinding(errs, SeverityError, "exceeds build volume") {
		t.Errorf("expected build volume error, got %v", errs)
	}
	if errs := ValidateForSplit(s); HasErrors(errs) {
		t.Errorf("ValidateForSplit() = %v, want no errors", errs)
	}

	s.Length = 100
	s.Height = 251
	if !hasFinding(Validate(s, DefaultBuildVolume), SeverityError, "exceeds build volume") {
		t.Error("expected build volume error for height 251")
	}
}

func TestValidateCompartments(t *testing.T) {
	s := DefaultSettings()
	s.Compartments = []Compartment{
		{X: 2, Y: 2, Width: 40, Depth: 40},
		{X: 90, Y: 2, Width: 40, Depth: 40, Label: "overhang"},
		{X: 2, Y: 2, Width: 0, Depth: 40},
		{X: 2, Y: 2, Width: 10, Depth: 10, Shape: "hexagon"},
	}
	errs := Validate(s, DefaultBuildVolume)
	if !hasFinding(errs, SeverityError, "outside") {
		t.Errorf("expected outside error, got %v", errs)
	}
	if !hasFinding(errs, SeverityError, "size must be positive") {
		t.Errorf("expected size error, got %v", errs)
	}
	if !hasFinding(errs, SeverityError, "unknown shape") {
		t.Errorf("expected shape error, got %v", errs)
	}
	if len(errs) != 3 {
		t.Errorf("got %d findings, want 3: %v", len(errs), errs)
	}
}

func TestValidateCompartmentInsideFloor(t *testing.T) {
	tests := []struct {
		name    string
		c       Compartment
		wantErr bool
	}{
		{"shallow pocket on the floor", Compartment{X: 10, Y: 10, Width: 20, Depth: 20, Height: 1}, true},
		{"pocket ending at the floor", Compartment{X: 10, Y: 10, Z: 1, Width: 20, Depth: 20, Height: 1}, true},
		{"pocket reaching above the floor", Compartment{X: 10, Y: 10, Width: 20, Depth: 20, Height: 3}, false},
		{"full-height pocket", Compartment{X: 10, Y: 10, Width: 20, Depth: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.Compartments = []Compartment{tt.c}
			errs := Validate(s, DefaultBuildVolume)
			if got := hasFinding(errs, SeverityError, "inside the 2mm floor"); got != tt.wantErr {
				t.Errorf("floor error = %v, want %v (findings %v)", got, tt.wantErr, errs)
			}
		})
	}
}

func TestValidatePartsWarnsOnOversizedPart(t *testing.T) {
	parts := []Extents{NewExtents(150, 300, 100), NewExtents(150, 300, 100)}
	warnings := ValidateParts(parts, DefaultBuildVolume)
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(warnings))
	}
	if HasErrors(warnings) {
		t.Error("ValidateParts returned error severity, want warnings only")
	}
}

func TestValidatePartsUnsplitOversized(t *testing.T) {
	// Within a 256mm max dimension but taller than the build volume, so the
	// splitter returns the tray unchanged.
	parts := []Extents{NewExtents(200, 200, 255)}
	errs := ValidateParts(parts, DefaultBuildVolume)
	if len(errs) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(errs), errs)
	}
	if !HasErrors(errs) {
		t.Error("unsplit oversized tray should be an error")
	}
	if strings.Contains(errs[0].Message, "after split") {
		t.Errorf("message %q talks about a split that did not happen", errs[0].Message)
	}
	if !hasFinding(errs, SeverityError, "exceeds build volume") {
		t.Errorf("expected build volume error, got %v", errs)
	}

	if errs := ValidateParts([]Extents{NewExtents(200, 200, 200)}, DefaultBuildVolume); len(errs) != 0 {
		t.Errorf("fitting single part: %v", errs)
	}
}

func TestValidateBoardgame(t *testing.T) {
	if errs := ValidateBoardgame(DefaultBoardgameSettings()); len(errs) != 0 {
		t.Errorf("ValidateBoardgame(defaults) = %v", errs)
	}
	errs := ValidateBoardgame(BoardgameSettings{CardSize: "big", Quantity: -1})
	if len(errs) != 2 {
		t.Errorf("got %d findings, want 2: %v", len(errs), errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "wall", Message: "too thin", Severity: SeverityError}
	if got := e.Error(); got != "[error] wall: too thin" {
		t.Errorf("Error() = %q", got)
	}
	e = ValidationError{Message: "odd", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] odd" {
		t.Errorf("Error() = %q", got)
	}
}
