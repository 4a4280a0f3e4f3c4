package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"liftplan/internal/generator"
)

func sampleResult() *generator.Result {
	return &generator.Result{
		Success:  true,
		PlanIDs:  []int64{10, 11},
		PlanData: map[string]any{"plan_name": "Upper Lower Strength"},
		Errors:   []string{},
		Warnings: []string{"only 12 exercises match"},
	}
}

func TestEncodeResult(t *testing.T) {
	tests := []struct {
		path      string
		unmarshal func([]byte, any) error
	}{
		{"plan.json", json.Unmarshal},
		{"plan", json.Unmarshal},
		{"plan.yaml", yaml.Unmarshal},
		{"PLAN.YML", yaml.Unmarshal},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			data, err := encodeResult(tt.path, sampleResult())
			require.NoError(t, err)

			var doc map[string]any
			require.NoError(t, tt.unmarshal(data, &doc))
			assert.Equal(t, true, doc["success"])
			assert.Len(t, doc["plan_ids"], 2)
			assert.Equal(t, "Upper Lower Strength", doc["plan_data"].(map[string]any)["plan_name"])
		})
	}
}

func TestValidateOptions(t *testing.T) {
	valid := generator.Options{PlanType: "ppl", WindowDays: 30, SetsPerSession: 18, Temperature: 0.3}
	require.NoError(t, validateOptions(valid))

	bad := []func(o *generator.Options){
		func(o *generator.Options) { o.PlanType = "bro-split" },
		func(o *generator.Options) { o.Periodization = "wave" },
		func(o *generator.Options) { o.TargetProfile = "bulk" },
		func(o *generator.Options) { o.WindowDays = 0 },
		func(o *generator.Options) { o.Temperature = 3 },
	}
	for i, mutate := range bad {
		o := valid
		mutate(&o)
		assert.Error(t, validateOptions(o), "case %d", i)
	}
}
