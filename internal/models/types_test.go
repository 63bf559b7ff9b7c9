package models

import "testing"

func TestToggledCompleted(t *testing.T) {
	cases := []struct {
		from Status
		want Status
	}{
		{StatusPlanToWatch, StatusCompleted},
		{StatusCompleted, StatusPlanToWatch},
		{StatusWatching, StatusCompleted},
		{StatusOnHold, StatusCompleted},
		{StatusDropped, StatusCompleted},
	}

	for _, tc := range cases {
		if got := ToggledCompleted(tc.from); got != tc.want {
			t.Errorf("ToggledCompleted(%s) = %s, want %s", tc.from, got, tc.want)
		}
	}
}

func TestToggledWatching(t *testing.T) {
	cases := []struct {
		from Status
		want Status
	}{
		{StatusPlanToWatch, StatusWatching},
		{StatusWatching, StatusPlanToWatch},
		{StatusCompleted, StatusWatching},
		{StatusOnHold, StatusWatching},
		{StatusDropped, StatusWatching},
	}

	for _, tc := range cases {
		if got := ToggledWatching(tc.from); got != tc.want {
			t.Errorf("ToggledWatching(%s) = %s, want %s", tc.from, got, tc.want)
		}
	}
}

func TestToggledCompletedIsBinaryFlip(t *testing.T) {
	// Double toggle returns to the original status for the two states the
	// flip moves between.
	for _, status := range []Status{StatusCompleted, StatusPlanToWatch} {
		if got := ToggledCompleted(ToggledCompleted(status)); got != status {
			t.Errorf("double toggle from %s = %s, want %s", status, got, status)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []Status{StatusWatching, StatusCompleted, StatusPlanToWatch, StatusOnHold, StatusDropped} {
		if !ValidStatus(status) {
			t.Errorf("expected %s to be valid", status)
		}
	}
	if ValidStatus("binged") {
		t.Error("expected unknown status to be invalid")
	}
}
