package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFormat(t *testing.T) {
	testCases := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{name: "nil", format: nil, wantErr: true},
		{name: "empty", format: Format{}, wantErr: true},
		{name: "single field", format: Format{{Name: "a", Width: 8}}},
		{name: "zero width", format: Format{{Name: "a", Width: 0}}},
		{name: "negative width", format: Format{{Name: "a", Width: 8}, {Name: "b", Width: -1}}, wantErr: true},
		{name: "empty name", format: Format{{Name: "", Width: 8}}, wantErr: true},
		{name: "duplicate name", format: Format{{Name: "a", Width: 8}, {Name: "a", Width: 8}}, wantErr: true},
		{
			name: "length prefix",
			format: Format{
				{Name: "n", Width: 8},
				{Name: "body", Width: Variable, LengthFrom: "n"},
			},
		},
		{
			name: "length prefix on fixed field",
			format: Format{
				{Name: "n", Width: 8},
				{Name: "body", Width: 8, LengthFrom: "n"},
			},
			wantErr: true,
		},
		{
			name: "length prefix after field",
			format: Format{
				{Name: "body", Width: Variable, LengthFrom: "n"},
				{Name: "n", Width: 8},
			},
			wantErr: true,
		},
		{
			name: "length prefix on variable field",
			format: Format{
				{Name: "n", Width: Variable},
				{Name: "body", Width: Variable, LengthFrom: "n"},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFormat(tc.format)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrFormat)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	f := Format{
		{Name: "a", Width: 3},
		{Name: "n", Width: 5},
		{Name: "b", Width: Variable, LengthFrom: "n"},
	}

	assert.Equal(t, 8, f.Bits())
	assert.Equal(t, 1, f.Index("n"))
	assert.Equal(t, -1, f.Index("zzz"))
	assert.Equal(t, []string{"a", "n", "b"}, f.Names())
	assert.Equal(t, "{a:3, n:5, b:0<n}", f.String())
	assert.True(t, f[2].IsVariable())

	c := f.Clone()
	c[0].Width = 99
	assert.Equal(t, 3, f[0].Width)
}

func TestErrorMessage(t *testing.T) {
	err := ValidateFormat(Format{{Name: "x", Width: -1}})

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	assert.Equal(t, KindFormat, cerr.Kind)
	assert.Equal(t, "x", cerr.Field)
	assert.Equal(t, `codec validate: format at field "x": negative width -1`, err.Error())

	assert.False(t, errors.Is(err, ErrAlignment))
}
