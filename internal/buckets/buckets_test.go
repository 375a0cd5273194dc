package buckets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playsift/levelscope/internal/buckets"
	"github.com/playsift/levelscope/internal/metric"
	"github.com/playsift/levelscope/internal/table"
)

func TestBuildRanges(t *testing.T) {
	bs := buckets.Build(95)
	require.Len(t, bs, 6)
	want := [][2]int{{1, 10}, {11, 30}, {31, 50}, {51, 70}, {71, 90}, {91, 95}}
	for i, w := range want {
		assert.Equal(t, w[0], bs[i].Start, "bucket %d start", i)
		assert.Equal(t, w[1], bs[i].End, "bucket %d end", i)
	}
}

func TestBuildCoversEveryLevel(t *testing.T) {
	for _, maxLevel := range []int{1, 9, 10, 11, 150, 151, 1999, 2500} {
		bs := buckets.Build(maxLevel)
		require.NotEmpty(t, bs, "maxLevel %d", maxLevel)
		assert.Equal(t, 1, bs[0].Start)
		assert.Equal(t, maxLevel, bs[len(bs)-1].End)
		for i := 1; i < len(bs); i++ {
			assert.Equal(t, bs[i-1].End+1, bs[i].Start, "gap before bucket %d at maxLevel %d", i, maxLevel)
		}
	}
}

func TestBuildDegenerate(t *testing.T) {
	assert.Nil(t, buckets.Build(0))
	assert.Nil(t, buckets.Build(-5))
}

func TestAggregate(t *testing.T) {
	score, ok := metric.ByName("Score")
	require.True(t, ok)

	in := &table.Table{
		Header: []string{"Level", "Score", "TotalUser"},
		Rows: []table.Row{
			{"Level": "1", "Score": "10", "TotalUser": "100"},
			{"Level": "2", "Score": "20", "TotalUser": "200"},
			{"Level": "3", "Score": "n/a", "TotalUser": "50"},
			{"Level": "oops", "Score": "999", "TotalUser": "999"},
		},
	}
	out := buckets.Aggregate(in, "Level", "", []metric.Metric{score})
	require.Len(t, out.Rows, 1)

	row := out.Rows[0]
	assert.Equal(t, "1", row["Range Start"])
	assert.Equal(t, "3", row["Range End"])
	assert.Equal(t, "3", row["Row Count"])
	assert.Equal(t, "350", row["Total Users"])
	// unparseable sample drops out of the average, not the bucket
	assert.Equal(t, "15", row["Score"])

	for _, col := range []string{"Notes", "Action", "Owner"} {
		v, present := row[col]
		assert.True(t, present, col)
		assert.Empty(t, v)
	}
}

func TestAggregateCustomUserKey(t *testing.T) {
	score, _ := metric.ByName("Score")
	in := &table.Table{
		Header: []string{"Level", "Score", "Players"},
		Rows: []table.Row{
			{"Level": "5", "Score": "1", "Players": "40"},
			{"Level": "7", "Score": "3", "Players": "60"},
		},
	}
	out := buckets.Aggregate(in, "Level", "Players", []metric.Metric{score})
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "100", out.Rows[0]["Total Users"])
}

func TestAggregateEmpty(t *testing.T) {
	score, _ := metric.ByName("Score")
	out := buckets.Aggregate(&table.Table{}, "Level", "", []metric.Metric{score})
	assert.Empty(t, out.Rows)
	assert.Contains(t, out.Header, "Range Start")
}

func TestAverageNoSamples(t *testing.T) {
	bs := buckets.Build(10)
	assert.Zero(t, bs[0].Average("Score"))
}
