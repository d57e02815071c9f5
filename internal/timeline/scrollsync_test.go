package timeline

import "testing"

func TestScrollSync_Propagates(t *testing.T) {
	sync := NewScrollSync()
	var header, body, scrollbar float64
	h := sync.Register("header", func(x float64) { header = x })
	sync.Register("body", func(x float64) { body = x })
	sync.Register("scrollbar", func(x float64) { scrollbar = x })

	h.SetOffset(150)

	if header != 150 || body != 150 || scrollbar != 150 {
		t.Errorf("offsets after header scroll: header=%g body=%g scrollbar=%g, want all 150",
			header, body, scrollbar)
	}
}

func TestScrollSync_AnyRegionDrives(t *testing.T) {
	sync := NewScrollSync()
	offsets := map[string]float64{}
	regions := []*ScrollRegion{
		sync.Register("header", func(x float64) { offsets["header"] = x }),
		sync.Register("body", func(x float64) { offsets["body"] = x }),
		sync.Register("scrollbar", func(x float64) { offsets["scrollbar"] = x }),
	}

	for i, driver := range regions {
		want := float64((i + 1) * 40)
		driver.SetOffset(want)
		for name, got := range offsets {
			if got != want {
				t.Errorf("after %s drove to %g, %s is at %g", driver.Name(), want, name, got)
			}
		}
	}
}

// A region that scrolls again from inside its apply callback (a clamping
// surface pushing back) must not start a propagation storm.
func TestScrollSync_ReentrancyGuard(t *testing.T) {
	sync := NewScrollSync()
	applies := 0
	var headerX, bodyX float64

	var body *ScrollRegion
	sync.Register("header", func(x float64) {
		applies++
		headerX = x
	})
	body = sync.Register("body", func(x float64) {
		applies++
		if applies > 10 {
			t.Fatal("propagation cycle did not terminate")
		}
		// Clamp and push back, the way a narrower surface would.
		const maxX = 120
		bodyX = x
		if x > maxX {
			body.SetOffset(maxX)
		}
	})

	sync.regions[0].SetOffset(200)

	if headerX != 200 {
		t.Errorf("header offset = %g, want 200", headerX)
	}
	if bodyX != 120 {
		t.Errorf("body offset = %g, want clamped 120", bodyX)
	}
	if applies > 4 {
		t.Errorf("%d apply calls for a single scroll, expected a handful at most", applies)
	}
}

func TestScrollSync_SingleRegion(t *testing.T) {
	sync := NewScrollSync()
	var x float64
	only := sync.Register("body", func(v float64) { x = v })
	only.SetOffset(75)
	if x != 75 {
		t.Errorf("offset = %g, want 75", x)
	}
}
