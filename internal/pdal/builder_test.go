package pdal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/pdal"
)

// TestNewPointsPipeline_NoOptions tests that a bare pipeline has no filter stages
func TestNewPointsPipeline_NoOptions(t *testing.T) {
	p := pdal.NewPointsPipeline([]string{"a.las", "b.las"}, "/tmp/out.las", pdal.StageOptions{})

	assert.Empty(t, p.Filters)
	require.Len(t, p.Readers, 2)
	assert.Equal(t, "a.las", p.Readers[0].Filename)
	assert.Equal(t, "b.las", p.Readers[1].Filename)

	w, ok := p.Writer.(pdal.PointsWriter)
	require.True(t, ok)
	assert.Equal(t, "/tmp/out.las", w.Path)
}

// TestStageOptions_FilterOrder tests that the filter chain order is fixed
// regardless of which options are set
func TestStageOptions_FilterOrder(t *testing.T) {
	opt := pdal.StageOptions{
		CropWKT:        "POLYGON ((0 0, 1 0, 1 1, 0 0))",
		Decimation:     10,
		Outlier:        &pdal.StatisticalOutlier{StdDevThresh: 3},
		MaxZ:           "400",
		MaxScanAngle:   "15",
		ReturnNum:      "1",
		Classification: pdal.ClassificationFilter("dtm"),
	}
	p := pdal.NewPointsPipeline([]string{"a.las"}, "out.las", opt)

	require.Len(t, p.Filters, 7)
	assert.IsType(t, pdal.Crop{}, p.Filters[0])
	assert.IsType(t, pdal.Decimate{}, p.Filters[1])
	assert.IsType(t, pdal.StatisticalOutlier{}, p.Filters[2])

	maxz, ok := p.Filters[3].(pdal.RangeFilter)
	require.True(t, ok)
	assert.Equal(t, "Z", maxz.Dimension)

	angle, ok := p.Filters[4].(pdal.RangeFilter)
	require.True(t, ok)
	assert.Equal(t, "ScanAngleRank", angle.Dimension)
	require.Len(t, angle.Bounds, 2)
	assert.Equal(t, pdal.RangeBound{Predicate: "max", Value: "15"}, angle.Bounds[0])
	assert.Equal(t, pdal.RangeBound{Predicate: "min", Value: "-15"}, angle.Bounds[1])

	ret, ok := p.Filters[5].(pdal.RangeFilter)
	require.True(t, ok)
	assert.Equal(t, "ReturnNum", ret.Dimension)

	class, ok := p.Filters[6].(pdal.RangeFilter)
	require.True(t, ok)
	assert.Equal(t, "Classification", class.Dimension)
}

// TestStageOptions_OutlierDefaultMeanK tests the default neighbor count
func TestStageOptions_OutlierDefaultMeanK(t *testing.T) {
	opt := pdal.StageOptions{Outlier: &pdal.StatisticalOutlier{StdDevThresh: 3}}
	p := pdal.NewPointsPipeline([]string{"a.las"}, "out.las", opt)

	require.Len(t, p.Filters, 1)
	o, ok := p.Filters[0].(pdal.StatisticalOutlier)
	require.True(t, ok)
	assert.Equal(t, 20, o.MeanK)
	assert.Equal(t, 3.0, o.StdDevThresh)
}

// TestClassificationFilter tests the class-selection filter per DEM type
func TestClassificationFilter(t *testing.T) {
	tests := []struct {
		demtype   string
		wantNil   bool
		predicate string
		value     string
	}{
		{demtype: "dsm", predicate: "max", value: "1"},
		{demtype: "dtm", predicate: "equals", value: "2"},
		{demtype: "density", wantNil: true},
		{demtype: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.demtype, func(t *testing.T) {
			f := pdal.ClassificationFilter(tt.demtype)
			if tt.wantNil {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, "Classification", f.Dimension)
			require.Len(t, f.Bounds, 1)
			assert.Equal(t, tt.predicate, f.Bounds[0].Predicate)
			assert.Equal(t, tt.value, f.Bounds[0].Value)
		})
	}
}
