package cytoband

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTable is an excerpt of the hg38 UCSC cytoBand table.
var sampleTable = []string{
	"#chrom\tchromStart\tchromEnd\tname\tgieStain",
	"chr1\t0\t2300000\tp36.33\tgneg",
	"chr1\t2300000\t5300000\tp36.32\tgpos25",
	"chr1\t5300000\t7100000\tp36.31\tgneg",
	"chr1\t7100000\t9100000\tp36.23\tgpos25",
	"chr1\t120400000\t121700000\tp12\tgpos50",
	"chr1\t121700000\t123400000\tp11.1\tacen",
	"chr1\t123400000\t125100000\tq11\tacen",
	"chr1\t125100000\t143200000\tq12\tgvar",
	"chr1\t143200000\t147500000\tq21.1\tgneg",
	"chr1\t147500000\t150600000\tq21.2\tgpos50",
	"chr1_KI270706v1_random\t0\t175055\t\tgneg",
	"chr13\t0\t4600000\tp13\tgvar",
	"chr13\t4600000\t10100000\tp12\tstalk",
	"chr13\t10100000\t16500000\tp11.2\tgvar",
	"chr13\t16500000\t17700000\tp11.1\tacen",
	"chr13\t17700000\t18900000\tq11\tacen",
	"chr13\t18900000\t22600000\tq12.11\tgneg",
	"chrX\t0\t4400000\tp22.33\tgneg",
	"chrX\t58100000\t61000000\tp11.1\tacen",
	"chrX\t61000000\t63800000\tq11.1\tacen",
	"chrX\t63800000\t65400000\tq11.2\tgneg",
	"chr2\t0\t4400000\tp25.3\tgneg",
	"chr2\t93900000\t96000000\tq11.1\tacen",
	"chrUn_KI270302v1\t0\t2274\t\tgneg",
}

func TestRunSummary(t *testing.T) {
	result, err := Run(sampleTable, Options{})
	require.NoError(t, err)

	assert.Equal(t, 22, result.Summary.KeptRows)
	assert.Equal(t, 2, result.Summary.SkippedRows)
	assert.Equal(t, []string{"1", "2", "13", "X"}, result.Summary.Chromosomes)
	assert.Equal(t, result.Document.Count, result.Summary.Concepts)
	assert.Equal(t, len(result.Document.Concepts), result.Document.Count)
	assert.False(t, result.Summary.LinkAcrossCentromere)
	assert.Empty(t, result.Summary.CentromereLevels)
}

func TestRunMalformedRecordReportsLine(t *testing.T) {
	lines := []string{
		"#header",
		"1\t0\t100\tp36.33",
		"1\tx\t200\tp36.32",
	}
	result, err := Run(lines, Options{})
	assert.Nil(t, result)

	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.Line)
	assert.Equal(t, "1\tx\t200\tp36.32", malformed.Raw)
	assert.Contains(t, err.Error(), "line 3")
}

func TestRunInvalidNomenclatureReportsLine(t *testing.T) {
	lines := []string{
		"1\t0\t100\tp36.33",
		"",
		"1\t100\t200\t36.32",
	}
	result, err := Run(lines, Options{})
	assert.Nil(t, result)

	var invalid *InvalidNomenclatureError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 3, invalid.Line)
	assert.Equal(t, "36.32", invalid.Designation)
	assert.Equal(t, lines[2], invalid.Raw)
}

func TestRunDuplicateConflictIsFatal(t *testing.T) {
	lines := []string{
		"1\t0\t100\tp36.33",
		"1\t0\t120\tp36.33",
	}
	result, err := Run(lines, Options{})
	assert.Nil(t, result)

	var conflict *DuplicateCodeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.First.Line)
	assert.Equal(t, 2, conflict.Second.Line)
}

func TestRunReaderMatchesRun(t *testing.T) {
	opts := Options{LinkAcrossCentromere: true, CentromereLevels: []Level{LevelSubBand}}

	fromLines, err := Run(sampleTable, opts)
	require.NoError(t, err)
	fromReader, err := RunReader(strings.NewReader(strings.Join(sampleTable, "\n")), opts)
	require.NoError(t, err)

	a, err := fromLines.Document.Encode()
	require.NoError(t, err)
	b, err := fromReader.Document.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunHeader(t *testing.T) {
	result, err := Run(sampleTable, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultHeader(), result.Document.Header)

	custom := DefaultHeader()
	custom.URL = "http://example.org/fhir/CodeSystem/cytoband-test"
	custom.Version = "0.0.1"
	result, err = Run(sampleTable, Options{Header: custom})
	require.NoError(t, err)
	assert.Equal(t, custom, result.Document.Header)
}

func TestRunEmptyInput(t *testing.T) {
	result, err := Run(nil, Options{LinkAcrossCentromere: true})
	require.NoError(t, err)
	assert.Zero(t, result.Document.Count)
	assert.Empty(t, result.Warnings)
}
