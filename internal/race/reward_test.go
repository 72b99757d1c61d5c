package race

import "testing"

func TestReward(t *testing.T) {
	cases := []struct {
		name     string
		chars    int
		position int
		base     int
		want     int
	}{
		{"first place", 100, 1, 8, 108},
		{"second place", 100, 2, 8, 58},
		{"third place", 100, 3, 8, 41},
		{"fourth place", 100, 4, 8, 33},
		{"seventh place shares the floor", 100, 7, 8, 33},
		{"short text still earns a point", 2, 3, 8, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reward(tc.chars, tc.position, tc.base)
			if got != tc.want {
				t.Fatalf("Reward(%d, %d, %d) = %d, want %d", tc.chars, tc.position, tc.base, got, tc.want)
			}
		})
	}
}

func TestPositionMultiplierMonotone(t *testing.T) {
	prev := PositionMultiplier(1)
	for pos := 2; pos <= 6; pos++ {
		cur := PositionMultiplier(pos)
		if cur > prev {
			t.Fatalf("multiplier increased at position %d: %v > %v", pos, cur, prev)
		}
		prev = cur
	}
}
