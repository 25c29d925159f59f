package graphs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruhich/point-bot/internal/features/karma"
)

func TestGenerateEmptySeries(t *testing.T) {
	png, err := Generate(nil, 100, 2024, time.March)
	assert.NoError(t, err)
	assert.Nil(t, png)
}

func TestGenerateRendersPNG(t *testing.T) {
	series := []karma.DayActivity{
		{Day: 1, NetChange: 3},
		{Day: 5, NetChange: -2},
		{Day: 28, NetChange: 1},
	}

	png, err := Generate(series, 100, 2024, time.March)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// Сигнатура PNG.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
