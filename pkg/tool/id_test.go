package tool

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDV7(t *testing.T) {
	id := GenerateUUIDV7()
	u, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), u.Version())
}

func TestGenerateUUIDV7_TimeOrdered(t *testing.T) {
	a := GenerateUUIDV7()
	b := GenerateUUIDV7()
	require.LessOrEqual(t, a, b)
}
