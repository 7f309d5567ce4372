// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/internal/query"
	"github.com/pdiddy/paper-search/pkg/types"
)

func TestResolveJournals(t *testing.T) {
	all, err := resolveJournals(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(catalog.Journals))

	all, err = resolveJournals([]string{"Econometrica", "all"})
	require.NoError(t, err)
	assert.Len(t, all, len(catalog.Journals))

	got, err := resolveJournals([]string{"econometrica", "AEJ_Applied_Economics,Econometrica"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Econometrica", "AEJ: Applied Economics"}, journalNames(got))

	_, err = resolveJournals([]string{"Nature"})
	assert.ErrorIs(t, err, catalog.ErrUnknownJournal)
}

func newSearchFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "search"}
	cmd.Flags().String("keywords", "", "")
	cmd.Flags().String("from", "", "")
	cmd.Flags().String("to", "", "")
	cmd.Flags().StringSlice("journal", nil, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestCriteriaFromFlags(t *testing.T) {
	cmd := newSearchFlags(t, "--from", "2021", "--journal", "Econometrica")
	c, err := criteriaFromFlags(cmd, []string{"labor", "market"})
	require.NoError(t, err)
	assert.Equal(t, "labor market", c.Keywords)
	assert.Equal(t, 2021, c.YearFrom)
	assert.Equal(t, types.YearUnbounded, c.YearTo)
	assert.Equal(t, []string{"Econometrica"}, c.Journals)

	cmd = newSearchFlags(t, "--to", "twenty")
	_, err = criteriaFromFlags(cmd, nil)
	assert.Error(t, err)
}

func TestPrintSavedResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	result := types.QueryResult{{Journal: "Econometrica", Year: "2021", Title: "Labor Supply"}}
	require.NoError(t, query.WriteQueryFile(path, types.NewFilterCriteria("labor", "Econometrica"), result))

	qf, err := query.ReadQueryFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, qf.Results, 50, false))
	assert.Contains(t, buf.String(), "Labor Supply")
	assert.Contains(t, buf.String(), "1 papers found")

	buf.Reset()
	require.NoError(t, printResult(&buf, qf.Results, 0, true))
	assert.Contains(t, buf.String(), `"Labor Supply"`)
}
