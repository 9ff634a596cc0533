package yamlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	var s sample
	require.NoError(t, Unmarshal([]byte("name: x\ncount: 3\n"), &s))
	assert.Equal(t, sample{Name: "x", Count: 3}, s)
}

func TestUnmarshal_Validation(t *testing.T) {
	t.Parallel()

	var s sample
	assert.ErrorIs(t, Unmarshal(nil, &s), ErrNilData)
	assert.ErrorIs(t, Unmarshal([]byte("name: x"), nil), ErrNilDestination)

	big := []byte(strings.Repeat("a", MaxInputSize+1))
	assert.ErrorIs(t, Unmarshal(big, &s), ErrInputTooLarge)
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var s sample
	require.NoError(t, UnmarshalStrict([]byte("name: x"), &s))
	assert.Error(t, UnmarshalStrict([]byte("name: x\nbogus: 1"), &s))
}
