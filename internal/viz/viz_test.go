package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/kinematics"
)

func TestCanvas_SetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	assert.Equal(t, rune(0x2801), c.Grid[0][0])
	assert.Equal(t, rune(0x2880), c.Grid[0][1])

	c.Unset(0, 0)
	assert.Equal(t, rune(brailleBlank), c.Grid[0][0])

	c.Set(-1, 0)
	c.Set(100, 100)
	c.Unset(100, 100)
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for col := 0; col < 4; col++ {
		assert.Equal(t, rune(brailleBlank|0x1|0x8), c.Grid[0][col])
	}
}

func TestCanvas_ViewportKeepsAspect(t *testing.T) {
	c := NewCanvas(10, 5)
	c.SetViewport(kinematics.Point{X: -1, Y: -1}, kinematics.Point{X: 1, Y: 1})

	x0, _ := c.dot(kinematics.Point{X: -1, Y: 0})
	x1, _ := c.dot(kinematics.Point{X: 1, Y: 0})
	_, y0 := c.dot(kinematics.Point{X: 0, Y: 1})
	_, y1 := c.dot(kinematics.Point{X: 0, Y: -1})
	assert.InDelta(t, x1-x0, y1-y0, 1)
	assert.Less(t, y0, y1, "world y grows upwards")
}

func TestPreview_Pendulum(t *testing.T) {
	m := kinematics.PendulumMapper{Length: 1}
	cfg := m.Map(dynamo.State{math.Pi / 6, 0}, 0)

	c := Preview(cfg, kinematics.Point{X: -1.2, Y: -1.2}, kinematics.Point{X: 1.2, Y: 0.2}, 30, 10)
	out := c.String()
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 10)

	drawn := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				drawn++
			}
		}
	}
	assert.Greater(t, drawn, 5)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "───", Sparkline(nil, 3))
	s := Sparkline([]float64{0, 1, 2, 3}, 4)
	assert.NotEmpty(t, s)
}

func TestGradientText(t *testing.T) {
	assert.Empty(t, GradientText("", "#000000", "#ffffff"))
	out := GradientText("θ", "#000000", "not-a-colour")
	assert.Contains(t, out, "θ")
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"cyberpunk", "minimal", "ocean", "retro"}, ThemeNames())
	assert.Equal(t, "minimal", GetTheme("unknown").Name)
	assert.Contains(t, GetTheme("ocean").Paint(NewCanvas(1, 1)), string(rune(brailleBlank)))
}
