package model

import "testing"

func TestDistribution_Empty(t *testing.T) {
	snap := NewDistribution().Snapshot()
	if snap.Count != 0 || snap.Min != 0 || snap.Max != 0 {
		t.Errorf("empty snapshot = %+v, want zero value", snap)
	}
}

func TestDistribution_Snapshot(t *testing.T) {
	d := NewDistribution()
	for i := int64(1); i <= 100; i++ {
		d.Add(i)
	}

	snap := d.Snapshot()
	if snap.Count != 100 {
		t.Errorf("Count = %v, want 100", snap.Count)
	}
	if snap.Min != 1 || snap.Max != 100 {
		t.Errorf("min/max = %d/%d, want 1/100", snap.Min, snap.Max)
	}
	if snap.P50 != 50 {
		t.Errorf("P50 = %d, want 50", snap.P50)
	}
	if snap.P99 != 99 {
		t.Errorf("P99 = %d, want 99", snap.P99)
	}
	if snap.Avg != 50.5 {
		t.Errorf("Avg = %v, want 50.5", snap.Avg)
	}
	if snap.Total != 5050 {
		t.Errorf("Total = %v, want 5050", snap.Total)
	}
}

func TestDistribution_SnapshotDoesNotConsume(t *testing.T) {
	d := NewDistribution()
	d.Add(5)
	d.Add(3)

	first := d.Snapshot()
	second := d.Snapshot()
	if first != second {
		t.Error("repeated snapshots differ")
	}
	if d.Count() != 2 {
		t.Errorf("Count() = %d, want 2", d.Count())
	}
}
