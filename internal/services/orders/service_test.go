package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAllocateOrderNumberRetriesOnCollision(t *testing.T) {
	dup := errors.New(`duplicate key value violates unique constraint "idx_orders_order_number" (SQLSTATE 23505)`)

	var numbers []string
	err := allocateOrderNumber(func(number string) error {
		numbers = append(numbers, number)
		if len(numbers) < 3 {
			return dup
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, numbers, 3)

	// every attempt must draw a fresh number
	assert.NotEqual(t, numbers[0], numbers[1])
	assert.NotEqual(t, numbers[1], numbers[2])
}

func TestAllocateOrderNumberStopsOnOtherErrors(t *testing.T) {
	broken := errors.New("current transaction is aborted, commands ignored until end of transaction block (SQLSTATE 25P02)")

	attempts := 0
	err := allocateOrderNumber(func(number string) error {
		attempts++
		return broken
	})
	require.ErrorIs(t, err, broken)
	assert.Equal(t, 1, attempts, "an aborted session must not be retried into")
}

func TestAllocateOrderNumberGivesUpEventually(t *testing.T) {
	dup := errors.New("duplicate key value violates unique constraint")

	attempts := 0
	err := allocateOrderNumber(func(number string) error {
		attempts++
		return dup
	})
	require.Error(t, err)
	assert.Equal(t, orderNumberAttempts, attempts)
	assert.ErrorIs(t, err, dup)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_mobile_key"`)))
	assert.True(t, isUniqueViolation(errors.New("SQLSTATE 23505")))

	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("SQLSTATE 25P02")))
	assert.False(t, isUniqueViolation(gorm.ErrRecordNotFound))
}
