package builtin

import (
	"regexp"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)

func TestRegistry_Seed(t *testing.T) {
	r := NewRegistry(WithClock(func() time.Time { return fixedTime }))
	data := value.NewObject()
	data.Set("user", "joe")

	r.Seed(data)

	get := func(k string) any {
		v, ok := data.Get(k)
		require.True(t, ok, k)
		return v
	}

	assert.Equal(t, "joe", get("user"))
	assert.Equal(t, "2024-03-09T12:30:00Z", get("$now"))
	assert.Equal(t, "2024-03-09", get("$date"))
	assert.Equal(t, float64(fixedTime.Unix()), get("$timestamp"))
	assert.Equal(t, float64(fixedTime.UnixMilli()), get("$timestampMs"))

	_, err := uuid.Parse(get("$uuid").(string))
	assert.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[a-zA-Z0-9]{16}$`), get("$randomString"))
	assert.Regexp(t, regexp.MustCompile(`^[a-z]{8}@[a-z]{6}\.com$`), get("$randomEmail"))

	n := get("$randomInt").(float64)
	assert.GreaterOrEqual(t, n, 0.0)
	assert.Less(t, n, 1000.0)
}

func TestRegistry_SeedRefreshes(t *testing.T) {
	r := NewRegistry()
	data := value.NewObject()

	r.Seed(data)
	first, _ := data.Get("$uuid")
	r.Seed(data)
	second, _ := data.Get("$uuid")

	assert.NotEqual(t, first, second)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("answer", func() any { return 42.0 })

	assert.Contains(t, r.Names(), "$answer")

	data := value.NewObject()
	r.Seed(data)
	v, _ := data.Get("$answer")
	assert.Equal(t, 42.0, v)
}

func TestRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{
		"$date", "$now", "$randomEmail", "$randomInt", "$randomString",
		"$timestamp", "$timestampMs", "$uuid",
	}, NewRegistry().Names())
}
