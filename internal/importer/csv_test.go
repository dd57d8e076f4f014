package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitelog/internal/model"
)

func TestParseCSV_HeaderInAnyOrder(t *testing.T) {
	in := "\ufeffItem,Planned Progress (%),Date\n" +
		"foundation,10%,2026/01/10\n" +
		"frame,45.5,2026-02-01\n"

	res, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []model.SchedulePointRecord{
		{Date: "2026-01-10", Progress: 10},
		{Date: "2026-02-01", Progress: 45.5},
	}, res.Points)
	assert.Zero(t, res.Skipped)
}

func TestParseCSV_ChineseHeader(t *testing.T) {
	in := "日期,预定进度\n2026/03/01,5\n2026/04/01,20\n"
	res, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Points, 2)
	assert.Equal(t, "2026-04-01", res.Points[1].Date)
}

func TestParseCSV_NoHeaderUsesFirstColumns(t *testing.T) {
	in := "2026-01-01,0\n\n2026-01-31,100\n"
	res, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, res.Points, 2)
}

func TestParseCSV_SkipsBadRowsAndClamps(t *testing.T) {
	in := "date,progress\n" +
		"not-a-date,10\n" +
		"2026-01-05,abc\n" +
		"2026-01-06\n" +
		"2026-01-07,120\n"
	res, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.Points, 1)
	assert.Equal(t, 100.0, res.Points[0].Progress)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoRows)

	res, err := ParseCSV(strings.NewReader("date,progress\nx,y\n"))
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Equal(t, 1, res.Skipped)
}
