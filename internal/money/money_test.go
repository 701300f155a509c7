package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("whole amount", func(t *testing.T) {
		m, err := Parse("249")
		require.NoError(t, err)
		assert.Equal(t, int64(24900), m.Cents())
	})

	t.Run("two decimals", func(t *testing.T) {
		m, err := Parse("12.05")
		require.NoError(t, err)
		assert.Equal(t, int64(1205), m.Cents())
	})

	t.Run("sub-cent precision rejected", func(t *testing.T) {
		_, err := Parse("0.005")
		assert.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := Parse("ten")
		assert.Error(t, err)
	})
}

func TestTimesAndAdd(t *testing.T) {
	// 0.10 * 3 + 0.20 is exactly 0.50, unlike float64
	total := FromCents(10).Times(3).Add(FromCents(20))
	assert.Equal(t, FromCents(50), total)
	assert.Equal(t, "0.50", total.String())
}

func TestString(t *testing.T) {
	assert.Equal(t, "200.00", FromCents(20000).String())
	assert.Equal(t, "0.05", FromCents(5).String())
	assert.Equal(t, "0.00", FromCents(0).String())
}

func TestJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{FromCents(21050)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":210.50}`, string(b))

	var out struct {
		Total Money `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total":99.9}`), &out))
	assert.Equal(t, FromCents(9990), out.Total)

	require.NoError(t, json.Unmarshal([]byte(`{"total":"55"}`), &out))
	assert.Equal(t, FromCents(5500), out.Total)
}
