package domain

import "testing"

func TestCoordinateKeyRoundTrip(t *testing.T) {
	c := Coordinate{X: 3, Y: 12}
	if c.Key() != "3,12" || c.String() != "3,12" {
		t.Fatalf("unexpected key %q", c.Key())
	}
	got, err := ParseCoordinate(" 3, 12")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != c {
		t.Fatalf("expected %v, got %v", c, got)
	}
}

func TestParseCoordinateErrors(t *testing.T) {
	for _, key := range []string{"", "3", "a,1", "1,b"} {
		if _, err := ParseCoordinate(key); err == nil {
			t.Fatalf("expected error for %q", key)
		}
	}
}

func TestDirectionNormalizeAndDelta(t *testing.T) {
	if Direction("north").Valid() {
		t.Fatalf("north should not be valid")
	}
	if Direction("north").Normalize() != DirectionUp {
		t.Fatalf("unknown direction should normalize to up")
	}
	deltas := map[Direction][2]int{
		DirectionUp:    {0, -1},
		DirectionRight: {1, 0},
		DirectionDown:  {0, 1},
		DirectionLeft:  {-1, 0},
	}
	for dir, want := range deltas {
		dx, dy := dir.Delta()
		if dx != want[0] || dy != want[1] {
			t.Fatalf("%s: expected %v, got %d,%d", dir, want, dx, dy)
		}
	}
	if dx, dy := Direction("").Delta(); dx != 0 || dy != 0 {
		t.Fatalf("empty direction should not move")
	}
}

func TestDirectionRotation(t *testing.T) {
	d := DirectionUp
	for i, want := range []Direction{DirectionRight, DirectionDown, DirectionLeft, DirectionUp} {
		d = d.Clockwise()
		if d != want {
			t.Fatalf("step %d: expected %s, got %s", i, want, d)
		}
	}
	for _, dir := range Directions {
		if dir.Clockwise().CounterClockwise() != dir {
			t.Fatalf("counter clockwise should invert clockwise for %s", dir)
		}
	}
	if Direction("sideways").Clockwise() != DirectionRight {
		t.Fatalf("unknown direction rotates as up")
	}
}
