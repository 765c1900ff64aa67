package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	cases := []struct {
		name string
		res  Resource
		want float64
	}{
		{"full", Resource{MaxUnits: 10, AvailableQuantity: 10}, 100},
		{"half", Resource{MaxUnits: 4, AvailableQuantity: 2}, 50},
		{"empty", Resource{MaxUnits: 7, AvailableQuantity: 0}, 0},
		{"overflow is not clamped", Resource{MaxUnits: 10, AvailableQuantity: 15}, 150},
		{"zero max", Resource{MaxUnits: 0, AvailableQuantity: 3}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.res.Percent(), 1e-9)
		})
	}
}

func TestIndicator(t *testing.T) {
	r := Resource{Name: "Widget", MaxUnits: 10, AvailableQuantity: 3}
	assert.Equal(t, "3/10", r.Indicator())
}

func TestParseNewResource(t *testing.T) {
	got, err := ParseNewResource(" Widget ", "12")
	require.NoError(t, err)
	assert.Equal(t, NewResource{Name: "Widget", MaxUnits: 12}, got)

	invalid := []struct{ name, max string }{
		{"", "5"},
		{"   ", "5"},
		{"Widget", ""},
		{"Widget", "0"},
		{"Widget", "-3"},
		{"Widget", "abc"},
		{"Widget", "2.5"},
	}
	for _, in := range invalid {
		_, err := ParseNewResource(in.name, in.max)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ParseNewResource(%q, %q) = %v, want ErrInvalidInput", in.name, in.max, err)
		}
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	src := []Resource{{Name: "a", MaxUnits: 1}, {Name: "b", MaxUnits: 2}}
	snap := NewSnapshot(src)

	src[0].Name = "mutated"
	all := snap.All()
	all[1].Name = "mutated"

	require.Equal(t, 2, snap.Len())
	assert.Equal(t, "a", snap.At(0).Name)
	assert.Equal(t, "b", snap.At(1).Name)
	assert.False(t, snap.Empty())
	assert.True(t, NewSnapshot(nil).Empty())
}
