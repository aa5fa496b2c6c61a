package der_test

import (
	"bytes"
	"der"
	"der/dertest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenCases(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		md, err := os.ReadFile(file)
		require.NoError(t, err)
		cases, err := dertest.ExtractCases(md)
		require.NoError(t, err, file)
		for _, tc := range cases {
			tc := tc
			t.Run(filepath.Base(file)+"/"+tc.Name, func(t *testing.T) {
				runGoldenCase(t, tc)
			})
		}
	}
}

func runGoldenCase(t *testing.T, tc dertest.Case) {
	stmts, err := der.ParseFile("case.der", []byte(tc.Source))
	require.NoError(t, err)
	c := der.NewChecker()
	nodes, err := c.Run(stmts)
	if tc.Error != "" {
		require.Error(t, err)
		assert.Contains(t, err.Error(), tc.Error)
		return
	}
	require.NoError(t, err)
	if tc.C != "" {
		var out bytes.Buffer
		require.NoError(t, der.Emit(&out, nodes, der.Options{}))
		assert.Equal(t, tc.C, strings.TrimRight(out.String(), "\n"))
	}
	if tc.Scope != "" {
		var out bytes.Buffer
		require.NoError(t, der.DumpScope(&out, c.Scope))
		assert.Equal(t, tc.Scope, strings.TrimRight(out.String(), "\n"))
	}
}
