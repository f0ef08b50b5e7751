package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeList(t *testing.T) {
	t.Run("splits comma-delimited input", func(t *testing.T) {
		got := NormalizeList("Go, SQL ,Docker")
		assert.Equal(t, StringArray{"Go", "SQL", "Docker"}, got)
	})

	t.Run("drops empty entries", func(t *testing.T) {
		got := NormalizeList("Go,,  ,SQL")
		assert.Equal(t, StringArray{"Go", "SQL"}, got)
	})

	t.Run("accepts multiple inputs", func(t *testing.T) {
		got := NormalizeList("Go", "SQL,Docker")
		assert.Equal(t, StringArray{"Go", "SQL", "Docker"}, got)
	})

	t.Run("is idempotent", func(t *testing.T) {
		once := NormalizeList("Go, SQL ,Docker")
		twice := NormalizeList(once...)
		assert.Equal(t, once, twice)
	})

	t.Run("empty input yields empty list", func(t *testing.T) {
		got := NormalizeList("")
		assert.Equal(t, StringArray{}, got)
		assert.NotNil(t, got)
	})
}

func TestStringArrayUnmarshalJSON(t *testing.T) {
	t.Run("accepts a JSON array", func(t *testing.T) {
		var s StringArray
		require.NoError(t, json.Unmarshal([]byte(`["Go"," SQL ","Docker"]`), &s))
		assert.Equal(t, StringArray{"Go", "SQL", "Docker"}, s)
	})

	t.Run("accepts a comma-delimited string", func(t *testing.T) {
		var s StringArray
		require.NoError(t, json.Unmarshal([]byte(`"Go, SQL, Docker"`), &s))
		assert.Equal(t, StringArray{"Go", "SQL", "Docker"}, s)
	})

	t.Run("both forms normalize identically", func(t *testing.T) {
		var fromArray, fromString StringArray
		require.NoError(t, json.Unmarshal([]byte(`["Go","SQL"]`), &fromArray))
		require.NoError(t, json.Unmarshal([]byte(`"Go, SQL"`), &fromString))
		assert.Equal(t, fromArray, fromString)
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		var s StringArray
		assert.Error(t, json.Unmarshal([]byte(`42`), &s))
	})
}

func TestStringArrayScanValue(t *testing.T) {
	t.Run("round-trips through the driver format", func(t *testing.T) {
		original := StringArray{"Go", "SQL", "Docker"}

		value, err := original.Value()
		require.NoError(t, err)

		var scanned StringArray
		require.NoError(t, scanned.Scan(value))
		assert.Equal(t, original, scanned)
	})

	t.Run("elements keep commas, quotes and backslashes", func(t *testing.T) {
		original := StringArray{`C, C++`, `say "hello"`, `back\slash`, `{braces}`}

		value, err := original.Value()
		require.NoError(t, err)

		var scanned StringArray
		require.NoError(t, scanned.Scan(value))
		assert.Equal(t, original, scanned)
	})

	t.Run("nil encodes as an empty array, not NULL", func(t *testing.T) {
		var s StringArray
		value, err := s.Value()
		require.NoError(t, err)
		assert.Equal(t, "{}", value)
	})

	t.Run("empty array", func(t *testing.T) {
		value, err := StringArray{}.Value()
		require.NoError(t, err)
		assert.Equal(t, "{}", value)

		var scanned StringArray
		require.NoError(t, scanned.Scan("{}"))
		assert.Empty(t, scanned)
	})

	t.Run("nil scans to empty", func(t *testing.T) {
		var scanned StringArray
		require.NoError(t, scanned.Scan(nil))
		assert.Empty(t, scanned)
	})
}

func TestValidApplicationStatus(t *testing.T) {
	for _, status := range []string{
		StatusPending, StatusReviewed, StatusShortlisted,
		StatusInterviewed, StatusAccepted, StatusRejected,
	} {
		assert.True(t, ValidApplicationStatus(status), status)
	}
	assert.False(t, ValidApplicationStatus("approved"))
	assert.False(t, ValidApplicationStatus(""))
}

func TestStudentFullName(t *testing.T) {
	s := &Student{FirstName: "Ada", LastName: "Wanjiru"}
	assert.Equal(t, "Ada Wanjiru", s.FullName())
}
