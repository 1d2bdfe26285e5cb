package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_GetReturnsInitial(t *testing.T) {
	v := NewValue(42)
	assert.Equal(t, 42, v.Get())
}

func TestValue_SetNotifiesSubscribers(t *testing.T) {
	v := NewValue("")

	var got []string
	cancel := v.Subscribe(func(s string) { got = append(got, s) })
	defer cancel()

	v.Set("a")
	v.Set("b")

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, "b", v.Get())
}

func TestValue_CancelStopsNotifications(t *testing.T) {
	v := NewValue(0)

	calls := 0
	cancel := v.Subscribe(func(int) { calls++ })

	v.Set(1)
	cancel()
	v.Set(2)

	assert.Equal(t, 1, calls)
}

func TestValue_SubscriberMayCallGet(t *testing.T) {
	v := NewValue(0)

	var seen int
	cancel := v.Subscribe(func(int) { seen = v.Get() })
	defer cancel()

	v.Set(7)
	assert.Equal(t, 7, seen)
}

func TestValue_MultipleSubscribers(t *testing.T) {
	v := NewValue(0)

	a, b := 0, 0
	defer v.Subscribe(func(n int) { a = n })()
	defer v.Subscribe(func(n int) { b = n })()

	v.Set(5)
	assert.Equal(t, 5, a)
	assert.Equal(t, 5, b)
}
