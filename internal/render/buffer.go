package render

// RGB is one strip cell.
type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{}
	White = RGB{255, 255, 255}
	Red   = RGB{255, 0, 0}
	Blue  = RGB{0, 0, 255}
)

// Luma returns the channel average used by the idle telemetry scan.
func (c RGB) Luma() int {
	return (int(c.R) + int(c.G) + int(c.B)) / 3
}

// Add saturates each channel at 255.
func (c RGB) Add(o RGB) RGB {
	return RGB{qadd8(c.R, o.R), qadd8(c.G, o.G), qadd8(c.B, o.B)}
}

// Or keeps the brighter value of each channel.
func (c RGB) Or(o RGB) RGB {
	return RGB{max8(c.R, o.R), max8(c.G, o.G), max8(c.B, o.B)}
}

// Scale multiplies every channel by scale/256.
func (c RGB) Scale(scale uint8) RGB {
	return RGB{scale8(c.R, scale), scale8(c.G, scale), scale8(c.B, scale)}
}

// Strip is the primary buffer, one cell per LED.
type Strip []RGB

// NewStrip allocates a dark strip.
func NewStrip(length int) Strip {
	return make(Strip, length)
}

// Clear turns every cell off.
func (s Strip) Clear() {
	for i := range s {
		s[i] = Black
	}
}

// Fill paints every cell with c.
func (s Strip) Fill(c RGB) {
	for i := range s {
		s[i] = c
	}
}

// FadeToBlackBy dims every cell by amount/256.
func (s Strip) FadeToBlackBy(amount uint8) {
	keep := 255 - amount
	for i := range s {
		s[i] = s[i].Scale(keep)
	}
}

// Matrix is the secondary buffer: rows x cols binary cells, row 0 on top.
type Matrix struct {
	rows  int
	cols  int
	cells []bool
}

// NewMatrix allocates a cleared matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// At reports whether a cell is lit. Out-of-range cells are off.
func (m *Matrix) At(row, col int) bool {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return false
	}
	return m.cells[row*m.cols+col]
}

// Set lights a cell; out-of-range coordinates are ignored.
func (m *Matrix) Set(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return
	}
	m.cells[row*m.cols+col] = true
}

// Clear turns every cell off.
func (m *Matrix) Clear() {
	for i := range m.cells {
		m.cells[i] = false
	}
}

// FillBottom lights the bottom n rows across all columns.
func (m *Matrix) FillBottom(n int) {
	n = clampInt(n, 0, m.rows)
	for y := 0; y < n; y++ {
		row := m.rows - 1 - y
		for x := 0; x < m.cols; x++ {
			m.cells[row*m.cols+x] = true
		}
	}
}

// Lit counts lit cells.
func (m *Matrix) Lit() int {
	n := 0
	for _, on := range m.cells {
		if on {
			n++
		}
	}
	return n
}

// LitRows counts rows with at least one lit cell.
func (m *Matrix) LitRows() int {
	n := 0
	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			if m.cells[y*m.cols+x] {
				n++
				break
			}
		}
	}
	return n
}

func qadd8(a, b uint8) uint8 {
	s := int(a) + int(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

func scale8(v, scale uint8) uint8 {
	return uint8((uint16(v) * (uint16(scale) + 1)) >> 8)
}

func max8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
