package types

// Point is a position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether pt lies inside r.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X && pt.X < r.X+r.Width && pt.Y >= r.Y && pt.Y < r.Y+r.Height
}

// WindowState is the geometry and placement of one open app window.
type WindowState struct {
	Owner     AppID   `json:"owner"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Persona   Persona `json:"persona"`
	Workspace int     `json:"workspace"`
	Sticky    bool    `json:"sticky"`
}

// Bounds returns the window rectangle.
func (w WindowState) Bounds() Rect {
	return Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
}

// Size returns the window dimensions.
func (w WindowState) Size() Size {
	return Size{Width: w.Width, Height: w.Height}
}

// SnapKey names a keyboard snap binding.
type SnapKey string

const (
	SnapTopLeft     SnapKey = "1"
	SnapTopRight    SnapKey = "2"
	SnapBottomLeft  SnapKey = "3"
	SnapBottomRight SnapKey = "4"
	SnapLeft        SnapKey = "left"
	SnapRight       SnapKey = "right"
	SnapUp          SnapKey = "up"
	SnapDown        SnapKey = "down"
	SnapMaximize    SnapKey = "enter"
	SnapCenter      SnapKey = "c"
	SnapFullscreen  SnapKey = "f"
)
