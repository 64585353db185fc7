package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanComparator mirrors how comparators were once derived from label text.
func scanComparator(text string) Comparator {
	for _, c := range []Comparator{GreaterEqual, LessEqual, NotEqual, Equal, Greater, Less} {
		if strings.Contains(text, string(c)) {
			return c
		}
	}
	return Unknown
}

func TestDefault_ContiguousIDs(t *testing.T) {
	c := Default()
	require.Equal(t, 129, c.Len())
	for i, id := range c.IDs() {
		assert.Equal(t, i+1, id)
	}
}

func TestDefault_ComparatorMatchesDescription(t *testing.T) {
	for _, d := range Default().List() {
		assert.Equal(t, scanComparator(d.Description), d.Comparator, "condition %d %q", d.ID, d.Description)
		assert.NotEmpty(t, d.Family, "condition %d", d.ID)
	}
}

func TestDefault_KnownEntries(t *testing.T) {
	tests := []struct {
		id   int
		desc string
		cmp  Comparator
	}{
		{1, "Close 18h DAY-1 ≥ Open 18h DAY-1", GreaterEqual},
		{3, "Close 4h ≥ Open 4h", GreaterEqual},
		{18, "Close 19h ≥ Open 19h", GreaterEqual},
		{20, "Low 5h ≤ Low 4h", LessEqual},
		{46, "High 15h ≥ High [4;15]", GreaterEqual},
		{47, "High 16h ≥ High [4;19]", GreaterEqual},
		{66, "High 19h ≥ High 18h", GreaterEqual},
		{68, "Low 10h < Low [4;9]", Less},
		{72, "Close 4h ≠ High 4h", NotEqual},
		{76, "Close 5h ≠ High 5h", NotEqual},
		{101, "High 19h ≠ Low 19h", NotEqual},
		{107, "First bar = 9h", Equal},
		{111, "Open 19h = Low 19h", Equal},
		{123, "Close 19h = High 19h", Equal},
		{126, "High [4h DAY ; 19h DAY] > 2 * Close 19h DAY-1", Greater},
		{129, "Low [16h DAY-1 ; 19h DAY] < 0.5 * Open 16h DAY-1", Less},
	}
	c := Default()
	for _, tt := range tests {
		d, ok := c.Get(tt.id)
		require.True(t, ok, "id %d", tt.id)
		assert.Equal(t, tt.desc, d.Description)
		assert.Equal(t, tt.cmp, d.Comparator)
	}
}

func TestComparator_InverseIsSymmetric(t *testing.T) {
	pairs := map[Comparator]Comparator{
		GreaterEqual: Less,
		LessEqual:    Greater,
		Equal:        NotEqual,
	}
	for a, b := range pairs {
		assert.Equal(t, b, a.Inverse())
		assert.Equal(t, a, b.Inverse())
		assert.True(t, a.Invertible())
		assert.True(t, b.Invertible())
	}
	assert.Equal(t, Unknown, Unknown.Inverse())
	assert.False(t, Unknown.Invertible())
}

func TestComparator_ApplyNegatesInverse(t *testing.T) {
	values := [][2]float64{{1, 2}, {2, 2}, {3, 2}}
	for _, c := range []Comparator{GreaterEqual, LessEqual, Equal, NotEqual, Greater, Less} {
		for _, v := range values {
			assert.Equal(t, !c.Apply(v[0], v[1]), c.Inverse().Apply(v[0], v[1]), "%s on %v", c, v)
		}
	}
	assert.False(t, Unknown.Apply(1, 1))
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]Definition{{ID: 1}, {ID: 1}})
	assert.Error(t, err)

	_, err = New([]Definition{{ID: 0}})
	assert.Error(t, err)

	c, err := New([]Definition{{ID: 2, Description: "Volume spike"}, {ID: 1, Comparator: Less}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, c.IDs())
	d, _ := c.Get(2)
	assert.Equal(t, Unknown, d.Comparator)
	assert.False(t, d.Invertible())
}

func TestLookup_UnknownID(t *testing.T) {
	_, err := Default().Lookup(999)
	assert.True(t, errors.Is(err, ErrUnknownCondition))
}
