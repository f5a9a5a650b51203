// internal/nodeid/table_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Intern(t *testing.T) {
	var tbl Table

	a, created, err := tbl.Intern("a")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ID(0), a)

	b, created, err := tbl.Intern("b")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ID(1), b)

	again, created, err := tbl.Intern("a")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a, again)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"a", "b"}, tbl.Names())
}

func TestTable_Lookup(t *testing.T) {
	var tbl Table
	_, _, err := tbl.Intern("n12")
	require.NoError(t, err)

	id, ok := tbl.Lookup("n12")
	require.True(t, ok)
	assert.Equal(t, "n12", tbl.Name(id))

	_, ok = tbl.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, "", tbl.Name(None))
	assert.Equal(t, "", tbl.Name(ID(42)))
}

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{name: "plain", input: "n1"},
		{name: "brackets and dots", input: "bus[3].q"},
		{name: "empty", input: "", expectErr: true},
		{name: "whitespace", input: "a b", expectErr: true},
		{name: "tab", input: "a\tb", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestID_String(t *testing.T) {
	assert.Equal(t, "#7", ID(7).String())
	assert.Equal(t, "#none", None.String())
	assert.False(t, None.Valid())
}
