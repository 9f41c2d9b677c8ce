package tray

// Default BoxModel dimensions in mm.
const (
	DefaultBoxLength = 100
	DefaultBoxWidth  = 100
	DefaultBoxHeight = 50
)

// BoxModel holds the dimensions of a rectangular box being edited.
type BoxModel struct {
	Length float64
	Width  float64
	Height float64
}

// NewBoxModel returns a 100x100x50 box.
func NewBoxModel() *BoxModel {
	return &BoxModel{
		Length: DefaultBoxLength,
		Width:  DefaultBoxWidth,
		Height: DefaultBoxHeight,
	}
}

// SetDimensions replaces all three dimensions.
func (b *BoxModel) SetDimensions(length, width, height float64) {
	b.Length = length
	b.Width = width
	b.Height = height
}

// Dimensions returns length, width, height.
func (b *BoxModel) Dimensions() (length, width, height float64) {
	return b.Length, b.Width, b.Height
}

// Extents returns the box dimensions as an Extents value.
func (b *BoxModel) Extents() Extents {
	return NewExtents(b.Length, b.Width, b.Height)
}
