package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSteps_OrderedAndIdempotent(t *testing.T) {
	steps := NewRunner().Steps()
	assert.Len(t, steps, 3)

	assert.Contains(t, steps[0].SQL, "CREATE TABLE IF NOT EXISTS assignments")
	assert.Contains(t, steps[1].SQL, "REFERENCES assignments(id)", "payouts depend on assignments")

	for _, step := range steps {
		assert.True(t, strings.Contains(step.SQL, "IF NOT EXISTS"), step.Name)
	}
}

func TestVersion(t *testing.T) {
	var m Migrator = NewRunner()
	assert.Equal(t, "1.0.0", m.Version())
}
