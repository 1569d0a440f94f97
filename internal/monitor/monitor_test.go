package monitor

import (
	"testing"
	"time"
)

func TestNetworkMonitorEmpty(t *testing.T) {
	m := NewNetworkMonitor(time.Second)
	if bps := m.BytesPerSecond(); bps != 0 {
		t.Fatalf("expected 0 bps with no samples, got %f", bps)
	}
	if mult := m.SizeMultiplier(); mult != 1.0 {
		t.Fatalf("expected neutral multiplier with no samples, got %f", mult)
	}
}

func TestNetworkMonitorSpeed(t *testing.T) {
	m := NewNetworkMonitor(time.Minute)
	// 10 MiB over 1s => fast
	m.Record(10<<20, time.Second)
	bps := m.BytesPerSecond()
	if bps < float64(9<<20) || bps > float64(11<<20) {
		t.Fatalf("unexpected bps: %f", bps)
	}
	if mult := m.SizeMultiplier(); mult != 1.5 {
		t.Fatalf("expected 1.5 multiplier, got %f", mult)
	}
}

func TestNetworkMonitorSlow(t *testing.T) {
	m := NewNetworkMonitor(time.Minute)
	// 1 KiB over 1s => slow
	m.Record(1024, time.Second)
	if mult := m.SizeMultiplier(); mult != 0.5 {
		t.Fatalf("expected 0.5 multiplier, got %f", mult)
	}
}

func TestNetworkMonitorIgnoresBadSamples(t *testing.T) {
	m := NewNetworkMonitor(time.Minute)
	m.Record(-1, time.Second)
	m.Record(100, 0)
	if bps := m.BytesPerSecond(); bps != 0 {
		t.Fatalf("expected bad samples ignored, got %f", bps)
	}
}

func TestMemoryMonitorInjectedReading(t *testing.T) {
	p := 0.5
	m := NewMemoryMonitor(0.8, func() float64 { return p })
	if m.UnderPressure() {
		t.Fatalf("expected no pressure at 0.5")
	}
	p = 0.9
	if !m.UnderPressure() {
		t.Fatalf("expected pressure at 0.9")
	}
	if m.Threshold() != 0.8 {
		t.Fatalf("unexpected threshold: %f", m.Threshold())
	}
}

func TestMemoryMonitorClamps(t *testing.T) {
	m := NewMemoryMonitor(0.8, func() float64 { return 1.5 })
	if got := m.Pressure(); got != 1 {
		t.Fatalf("expected clamp to 1, got %f", got)
	}
	m = NewMemoryMonitor(0.8, func() float64 { return -0.5 })
	if got := m.Pressure(); got != 0 {
		t.Fatalf("expected clamp to 0, got %f", got)
	}
}

func TestMemoryMonitorDefaults(t *testing.T) {
	m := NewMemoryMonitor(0, nil)
	if m.Threshold() != 0.8 {
		t.Fatalf("expected default threshold 0.8, got %f", m.Threshold())
	}
	// System reading should be a sane fraction.
	if p := m.Pressure(); p < 0 || p > 1 {
		t.Fatalf("pressure out of range: %f", p)
	}
}
