package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/kinematics"
)

// PhasePortrait holds the projection of a trajectory onto two state
// components.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []kinematics.Point
}

func NewPhasePortrait(tr *dynamo.Trajectory, xIdx, yIdx int) (*PhasePortrait, error) {
	if xIdx < 0 || yIdx < 0 || xIdx >= tr.Dim() || yIdx >= tr.Dim() {
		return nil, fmt.Errorf("%w: components %d, %d of %d", dynamo.ErrDimensionMismatch, xIdx, yIdx, tr.Dim())
	}
	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]kinematics.Point, 0, tr.Len()),
	}
	tr.Each(func(_ int, _ float64, x dynamo.State) {
		portrait.Points = append(portrait.Points, kinematics.Point{X: x[xIdx], Y: x[yIdx]})
	})
	return portrait, nil
}

// Xs and Ys return the two coordinate columns.
func (p *PhasePortrait) Xs() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.X
	}
	return out
}

func (p *PhasePortrait) Ys() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.Y
	}
	return out
}

// PoincareSection records components recordX and recordY, interpolated
// linearly, each time component crossIdx crosses threshold upwards.
func PoincareSection(tr *dynamo.Trajectory, crossIdx int, threshold float64, recordX, recordY int) (*PhasePortrait, error) {
	d := tr.Dim()
	if crossIdx >= d || recordX >= d || recordY >= d || crossIdx < 0 || recordX < 0 || recordY < 0 {
		return nil, fmt.Errorf("%w: state has %d components", dynamo.ErrDimensionMismatch, d)
	}

	section := &PhasePortrait{XIndex: recordX, YIndex: recordY}
	prev := tr.State(0)
	for i := 1; i < tr.Len(); i++ {
		curr := tr.State(i)
		if prev[crossIdx] < threshold && curr[crossIdx] >= threshold {
			frac := (threshold - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
			section.Points = append(section.Points, kinematics.Point{
				X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
			})
		}
		prev = curr
	}
	return section, nil
}

// ASCII draws the portrait on a width×height character grid with axes
// where they fall inside the padded bounds.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 1 || height <= 1 {
		return "no points"
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
