package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Class(t *testing.T) {
	testCases := []struct {
		kind    Kind
		class   Class
		isOp    bool
		display string
	}{
		{kind: And, class: ClassAnd, isOp: true, display: "AND"},
		{kind: Or, class: ClassOr, isOp: true, display: "OR"},
		{kind: Not, class: ClassNot, isOp: true, display: "NOT"},
		{kind: Input, display: "INPUT"},
		{kind: Output, display: "OUTPUT"},
		{kind: Wire, display: "WIRE"},
		{kind: KindUnknown, display: "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.display, func(t *testing.T) {
			class, ok := tc.kind.Class()
			assert.Equal(t, tc.isOp, ok)
			assert.Equal(t, tc.isOp, tc.kind.IsOperation())
			if ok {
				assert.Equal(t, tc.class, class)
				assert.Equal(t, tc.kind, class.Kind())
			}
			assert.Equal(t, tc.display, tc.kind.String())
		})
	}
}

func TestKind_StringOutOfRange(t *testing.T) {
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Equal(t, "Class(7)", Class(7).String())
}
