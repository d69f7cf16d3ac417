package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportCSV(t *testing.T) {
	upload := strings.Join([]string{
		"#,Name,CWID,Email,Added By",
		"1,jane doe,12345678,jane@warhawks.ulm.edu,board",
		",,,,",
		"2,JOHN ALLEN SMITH,87654321,john@warhawks.ulm.edu,board",
		"3,Ana Lima,,ana@warhawks.ulm.edu,board",
	}, "\n")

	rows, err := ParseImportCSV(strings.NewReader(upload))
	require.NoError(t, err)
	require.Len(t, rows, 3, "header and blank rows are skipped")

	assert.Equal(t, "Jane", rows[0].FirstName)
	assert.Equal(t, "Doe", rows[0].LastName)
	assert.Equal(t, "12345678", rows[0].StudentID)
	assert.Equal(t, "jane@warhawks.ulm.edu", rows[0].Email)

	// Everything after the first token is the last name.
	assert.Equal(t, "John", rows[1].FirstName)
	assert.Equal(t, "Allen smith", rows[1].LastName)

	// CWID is optional.
	assert.Empty(t, rows[2].StudentID)
}

func TestParseImportCSVRejectsSingleTokenName(t *testing.T) {
	upload := "#,Name,CWID,Email\n1,Jane Doe,12345678,jane@x.edu\n2,Cher,11112222,cher@x.edu\n"

	_, err := ParseImportCSV(strings.NewReader(upload))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadImportFile)
	assert.Contains(t, err.Error(), "row 3")
}

func TestParseImportCSVRejectsBadCWID(t *testing.T) {
	upload := "#,Name,CWID,Email\n1,Jane Doe,1234,jane@x.edu\n"

	_, err := ParseImportCSV(strings.NewReader(upload))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadImportFile)
	assert.Contains(t, err.Error(), "invalid CWID")
}

func TestParseImportCSVRejectsMissingName(t *testing.T) {
	upload := "#,Name,CWID,Email\n1,,12345678,jane@x.edu\n"

	_, err := ParseImportCSV(strings.NewReader(upload))
	assert.ErrorIs(t, err, ErrBadImportFile)
}
