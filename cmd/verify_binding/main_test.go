package main

import (
	"testing"
)

// TestRunConverges 多个随机种子下所有上下文收敛
func TestRunConverges(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		report, err := run(runOptions{Observers: 4, Players: 3, Steps: 40, Seed: seed})
		if err != nil {
			t.Fatalf("seed %d: run() error: %v", seed, err)
		}
		if len(report.Diverged) > 0 {
			t.Errorf("seed %d: diverged contexts %v", seed, report.Diverged)
		}
		if len(report.Authority.Bound) != 3 {
			t.Errorf("seed %d: authority bound %d bodies, want 3", seed, len(report.Authority.Bound))
		}
		if len(report.Observers) != 4 {
			t.Errorf("seed %d: %d observers joined, want 4", seed, len(report.Observers))
		}
	}
}

// TestRunNoObservers 没有观察端时也能运行
func TestRunNoObservers(t *testing.T) {
	report, err := run(runOptions{Players: 1, Steps: 5, Seed: 3})
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if len(report.Diverged) != 0 || len(report.Authority.Bound) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}
