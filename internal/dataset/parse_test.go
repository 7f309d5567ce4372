// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderAndRows(t *testing.T) {
	in := "journal,year,title,authors,abstract,url\n" +
		"Econometrica,2021,\"Labor, Markets\",A. Smith,Some abstract,https://doi.org/x\n" +
		"\n" +
		"Econometrica,2020,Second,B. Jones,,\n"

	recs, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Labor, Markets", recs[0].Title)
	assert.Equal(t, "https://doi.org/x", recs[0].URL)
	assert.Equal(t, "2020", recs[1].Year)
	assert.Empty(t, recs[1].URL)
}

func TestParseStripsBOMAndMatchesHeadersLoosely(t *testing.T) {
	in := "\xEF\xBB\xBF Title ,Journal,YEAR,extra\nA paper,Econometrica,2019,ignored\n"
	recs, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A paper", recs[0].Title)
	assert.Equal(t, "Econometrica", recs[0].Journal)
	assert.Equal(t, "2019", recs[0].Year)
}

func TestParseSkipsEmptyRecords(t *testing.T) {
	in := "journal,year,title\n,,\n , ,\nEconometrica,2019,T\n"
	recs, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestParseShortRowsLeaveFieldsEmpty(t *testing.T) {
	in := "journal,year,title,authors,abstract,url\nEconometrica,2019\n"
	recs, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Title)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyCSV))
}

func TestParseHeaderOnly(t *testing.T) {
	recs, err := Parse(strings.NewReader("journal,year,title\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}
