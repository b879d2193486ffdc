package chartjs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewChart(t *testing.T) {
	c := NewChart("", []string{"00:00", "03:00", "06:00"})
	if len(c.Data.Datasets) != 2 {
		t.Fatalf("got %d datasets, wanted 2", len(c.Data.Datasets))
	}
	for i, ds := range c.Data.Datasets {
		if len(ds.Data) != 3 {
			t.Errorf("dataset %d has %d points, wanted 3", i, len(ds.Data))
		}
	}
	if c.Options.Plugins.Title.Display {
		t.Error("untitled chart should not display a title")
	}

	titled := NewChart("Oslo", nil)
	if !titled.Options.Plugins.Title.Display || titled.Options.Plugins.Title.Text != "Oslo" {
		t.Errorf("got title %+v", titled.Options.Plugins.Title)
	}
}

func TestMissingPointsEncodeAsNull(t *testing.T) {
	c := NewChart("", []string{"a", "b"})
	c.Data.Datasets[0].Data[1] = FixedFloat64(3.14159, 2)

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"data":[null,3.14]`) {
		t.Errorf("unexpected json %s", b)
	}
}

func TestScaleModifiers(t *testing.T) {
	s := ChartScale{}.WithTitle("mm").WithMinAndMax(0, 10)
	if s.Title.Text != "mm" || *s.Min != 0 || *s.Max != 10 {
		t.Errorf("got %+v", s)
	}
	if m := (ChartScale{}).WithMin(-5); *m.Min != -5 || m.Max != nil {
		t.Errorf("got %+v", m)
	}
}
