package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTypeResolver(t *testing.T) {
	tests := []struct {
		name     string
		expected PointerType
	}{
		{"data.csv", PointerTypeFile},
		{"model.pkl", PointerTypeFile},
		{"weights.pt", PointerTypeFile},
		{"features.parquet", PointerTypeFile},
		{"warehouse.db", PointerTypeTable},
		{"schema.sql", PointerTypeTable},
		{"someartifact", PointerTypeUnknown},
		{"42", PointerTypeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DefaultTypeResolver(tt.name), "name %q", tt.name)
	}
}

func TestComponentRunAddInputDeduplicates(t *testing.T) {
	run := NewComponentRun("cleaning")
	run.AddInput(&IOPointer{Name: "raw.csv", PointerType: PointerTypeFile})
	run.AddInput(&IOPointer{Name: "raw.csv", PointerType: PointerTypeFile})
	run.AddInputs([]*IOPointer{
		{Name: "raw.csv", PointerType: PointerTypeFile},
		{Name: "labels.csv", PointerType: PointerTypeFile},
	})

	assert.Len(t, run.Inputs, 2)
	assert.ElementsMatch(t, []string{"raw.csv", "labels.csv"}, run.InputNames())
}

func TestComponentRunAddOutputDeduplicates(t *testing.T) {
	run := NewComponentRun("cleaning")
	run.AddOutput(&IOPointer{Name: "clean.csv"})
	run.AddOutputs([]*IOPointer{{Name: "clean.csv"}, {Name: "report.txt"}})

	assert.Len(t, run.Outputs, 2)
}

func TestCheckCompletenessReportsMissingFields(t *testing.T) {
	run := NewComponentRun("cleaning")

	err := run.CheckCompleteness()
	require.Error(t, err)

	var incomplete *IncompleteRunError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "cleaning", incomplete.ComponentName)
	assert.Equal(t, []string{"start_timestamp", "end_timestamp", "outputs"}, incomplete.Missing)
}

func TestCheckCompletenessPartial(t *testing.T) {
	run := NewComponentRun("cleaning")
	run.SetStartTimestamp()
	run.AddOutput(&IOPointer{Name: "clean.csv"})

	var incomplete *IncompleteRunError
	require.ErrorAs(t, run.CheckCompleteness(), &incomplete)
	assert.Equal(t, []string{"end_timestamp"}, incomplete.Missing)
}

func TestCheckCompletenessComplete(t *testing.T) {
	run := NewComponentRun("cleaning")
	run.StartTimestamp = time.Now()
	run.EndTimestamp = time.Now()
	run.AddOutput(&IOPointer{Name: "clean.csv"})

	assert.NoError(t, run.CheckCompleteness())
}

func TestComponentHasTag(t *testing.T) {
	c := &Component{Name: "training", Tags: []*Tag{{Name: "ml"}}}
	assert.True(t, c.HasTag("ml"))
	assert.False(t, c.HasTag("etl"))
}
