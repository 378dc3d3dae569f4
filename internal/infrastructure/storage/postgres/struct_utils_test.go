package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/core/id"
	"assetdesk/internal/domain/views"
)

type Stamps struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type sampleRow struct {
	Stamps
	ID       id.ID  `db:"id"`
	Name     string `db:"name"`
	Internal string `db:"-"`
	Note     string
}

func TestExtractDBColumns(t *testing.T) {
	assert.Equal(t, []string{"created_at", "updated_at", "id", "name"}, ExtractDBColumns[sampleRow]())
	assert.Equal(t, ExtractDBColumns[sampleRow](), ExtractDBColumns[*sampleRow](), "pointer types resolve to the struct")

	cols := ExtractDBColumns[views.View]()
	assert.Contains(t, cols, "quick")
	assert.Contains(t, cols, "is_default")
	assert.Len(t, cols, 12)
}

func TestStructToMap(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	row := sampleRow{
		Stamps:   Stamps{CreatedAt: now, UpdatedAt: now},
		ID:       id.New(),
		Name:     "North depot",
		Internal: "hidden",
		Note:     "untagged",
	}

	m := StructToMap(&row)
	require.Len(t, m, 4)
	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, "North depot", m["name"])
	assert.Equal(t, now, m["created_at"])

	m = StructToMap(row, "id", "created_at")
	assert.NotContains(t, m, "id")
	assert.NotContains(t, m, "created_at")
	assert.Contains(t, m, "updated_at")

	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap((*sampleRow)(nil)))
}
