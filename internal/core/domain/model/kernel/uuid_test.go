package kernel_test

import (
	"testing"

	"fieldservice/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create a valid random UUID", func(t *testing.T) {
		id := kernel.NewUUID()

		require.NoError(t, id.Validate())
		assert.NotEqual(t, uuid.Nil.String(), id.String())
	})

	t.Run("should create unique UUIDs", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		assert.False(t, id1.IsEqual(id2))
	})
}

func TestUUIDFromString(t *testing.T) {
	const canonical = "550e8400-e29b-41d4-a716-446655440000"

	testCases := []struct {
		name  string
		input string
	}{
		{"canonical form", canonical},
		{"braced form", "{550e8400-e29b-41d4-a716-446655440000}"},
		{"urn form", "urn:uuid:550e8400-e29b-41d4-a716-446655440000"},
		{"without hyphens", "550e8400e29b41d4a716446655440000"},
	}

	for _, tc := range testCases {
		t.Run("should accept "+tc.name, func(t *testing.T) {
			id, err := kernel.UUIDFromString(tc.input)

			require.NoError(t, err)
			assert.Equal(t, canonical, id.String())
		})
	}

	t.Run("should reject malformed input", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("should reject the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromString(uuid.Nil.String())

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestUUIDFromBytes(t *testing.T) {
	t.Run("should round trip through bytes", func(t *testing.T) {
		original := kernel.NewUUID()
		raw := original.Bytes()

		restored, err := kernel.UUIDFromBytes(raw[:])

		require.NoError(t, err)
		assert.True(t, original.IsEqual(restored))
	})

	t.Run("should reject short slices", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes([]byte{1, 2, 3})

		require.Error(t, err)
	})
}

func TestUUID_Less(t *testing.T) {
	a := kernel.MustUUIDFromString("00000000-0000-0000-0000-000000000001")
	b := kernel.MustUUIDFromString("00000000-0000-0000-0000-000000000002")

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID

	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, zero.Validate())
}
