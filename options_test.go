package lsoda

import (
	"strings"
	"testing"
)

func TestLoadOptionsYAMLOverridesDefaults(t *testing.T) {
	opt, err := LoadOptionsYAML(strings.NewReader("mxstep: 100\nhmax: 2.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if opt.MxStep != 100 {
		t.Errorf("MxStep = %d, want 100", opt.MxStep)
	}
	if opt.HMax != 2.5 {
		t.Errorf("HMax = %v, want 2.5", opt.HMax)
	}
	if opt.MxOrdN != maxOrderAdams {
		t.Errorf("MxOrdN = %d, want default %d preserved", opt.MxOrdN, maxOrderAdams)
	}
}

func TestLoadOptionsYAMLEmpty(t *testing.T) {
	opt, err := LoadOptionsYAML(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if opt != DefaultOptions() {
		t.Errorf("empty yaml should return defaults unchanged, got %+v", opt)
	}
}
