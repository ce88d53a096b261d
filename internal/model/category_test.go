package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "target", input: "target", want: CategoryTarget},
		{name: "trash", input: "trash", want: CategoryTrash},
		{name: "review", input: "review", want: CategoryReview},
		{name: "empty is rejected", input: "", wantErr: true},
		{name: "unknown value is rejected", input: "maybe", wantErr: true},
		{name: "case matters", input: "Target", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Confidence
		wantErr bool
	}{
		{name: "high", input: "high", want: ConfidenceHigh},
		{name: "medium", input: "medium", want: ConfidenceMedium},
		{name: "low", input: "low", want: ConfidenceLow},
		{name: "empty is allowed", input: "", want: ""},
		{name: "unknown tier is rejected", input: "certain", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfidence(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfidenceAutoApply(t *testing.T) {
	// Every tiered suggestion belongs to exactly one of the auto-apply or
	// review views.
	assert.True(t, ConfidenceHigh.AutoApply())
	assert.False(t, ConfidenceMedium.AutoApply())
	assert.False(t, ConfidenceLow.AutoApply())
	assert.False(t, Confidence("").AutoApply())
}

func TestEffectiveCpl(t *testing.T) {
	supplied := 1234.5
	tests := []struct {
		name   string
		record QueryMetricRecord
		want   *float64
	}{
		{
			name:   "supplied cpl wins",
			record: QueryMetricRecord{Cpl: &supplied, Cost: 100, Conversions: 1},
			want:   &supplied,
		},
		{
			name:   "derived from cost and conversions",
			record: QueryMetricRecord{Cost: 500, Conversions: 2},
			want:   float64Ptr(250),
		},
		{
			name:   "undefined without conversions",
			record: QueryMetricRecord{Cost: 500},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.EffectiveCpl()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

func TestEffectiveCTR(t *testing.T) {
	r := QueryMetricRecord{Impressions: 200, Clicks: 3}
	assert.InDelta(t, 0.015, r.EffectiveCTR(), 0.0001)

	r = QueryMetricRecord{CTR: 0.02, Impressions: 200, Clicks: 1}
	assert.InDelta(t, 0.02, r.EffectiveCTR(), 0.0001)

	r = QueryMetricRecord{}
	assert.Zero(t, r.EffectiveCTR())
}

func float64Ptr(v float64) *float64 {
	return &v
}
