package system

import "testing"

func TestMemoryUsage(t *testing.T) {
	percent, err := MemoryUsage()
	if err != nil {
		t.Fatalf("MemoryUsage returned error: %v", err)
	}
	if percent < 0 || percent > 100 {
		t.Fatalf("memory usage out of range: %v", percent)
	}
}

func TestCPUUsage(t *testing.T) {
	percent, err := CPUUsage()
	if err != nil {
		t.Fatalf("CPUUsage returned error: %v", err)
	}
	if percent < 0 || percent > 100 {
		t.Fatalf("cpu usage out of range: %v", percent)
	}
}
