package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/series"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil canvas")
	}

	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Text(0, 0, "a<b")

	svg := CanvasToSVG(c, 2)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Error("unexpected document size")
	}
	if !strings.Contains(svg, "a&lt;b") {
		t.Error("label not escaped")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	if TrajectoryToSVG([]analysis.Point{{X: 1, Y: 1}}, 100, 100, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}

	pts := []analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}
	svg := TrajectoryToSVG(pts, 120, 60, "#00ff00")
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("stroke colour missing")
	}
	if n := strings.Count(svg, " L"); n != 2 {
		t.Errorf("expected 2 line segments, got %d", n)
	}
}

func TestPhaseToSVG(t *testing.T) {
	if PhaseToSVG(series.New(), 100, 100) != "" {
		t.Error("expected empty output for an empty log")
	}

	m := physics.NewMassSpringDamper()
	if err := m.Reset(dynamo.Params{"m": 1, "k": 20, "x0": 0.2}); err != nil {
		t.Fatal(err)
	}
	l := series.New()
	for i := 0; i < 50; i++ {
		s := m.Snapshot()
		l.Append(s.Time, s.Values())
		m.Step(0.01)
	}

	svg := PhaseToSVG(l, 200, 200)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if n := strings.Count(svg, " L"); n != 49 {
		t.Errorf("expected 49 segments, got %d", n)
	}
}
