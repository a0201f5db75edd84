package viewkit

import "testing"

func TestScreenshotName(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"viewer", "viewer"},
		{"", "viewer"},
		{"   ", "viewer"},
		{"side view", "side_view"},
		{"run/3:final", "run_3_final"},
		{"v1.2-beta", "v1.2-beta"},
	}
	for _, c := range cases {
		if got := screenshotName(c.label); got != c.want {
			t.Errorf("screenshotName(%q) = %q, want %q", c.label, got, c.want)
		}
	}
}

func TestQueueScreenshotAccumulates(t *testing.T) {
	v, _ := newTestViewer()
	v.QueueScreenshot("a")
	v.QueueScreenshot("b")
	if got := len(v.screenshotQueue); got != 2 {
		t.Errorf("queue length = %d, want 2", got)
	}
}
