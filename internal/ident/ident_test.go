package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    UserID
		wantErr bool
	}{
		{name: "numeric string", in: "42", want: 42},
		{name: "padded string", in: "  7 ", want: 7},
		{name: "int", in: 13, want: 13},
		{name: "int64", in: int64(99), want: 99},
		{name: "whole float", in: float64(5), want: 5},
		{name: "json number", in: json.Number("1001"), want: 1001},
		{name: "fractional float", in: 1.5, wantErr: true},
		{name: "empty string", in: "", wantErr: true},
		{name: "non numeric", in: "abc", wantErr: true},
		{name: "zero", in: 0, wantErr: true},
		{name: "negative", in: "-3", wantErr: true},
		{name: "nil", in: nil, wantErr: true},
		{name: "unsupported", in: []int{1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUserID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeObjectID struct{}

func (fakeObjectID) Hex() string { return "65a1b2c3d4e5f60718293a4b" }

func TestParseRef(t *testing.T) {
	s := " abc "
	assert.Equal(t, Ref("abc"), ParseRef(" abc "))
	assert.Equal(t, Ref("abc"), ParseRef(&s))
	assert.Equal(t, Ref(""), ParseRef((*string)(nil)))
	assert.Equal(t, Ref(""), ParseRef(nil))
	assert.Equal(t, Ref("12"), ParseRef(int64(12)))
	assert.Equal(t, Ref("12"), ParseRef(float64(12)))
	assert.Equal(t, Ref("65a1b2c3d4e5f60718293a4b"), ParseRef(fakeObjectID{}))
}

func TestRef_IsObjectID(t *testing.T) {
	assert.True(t, Ref("65a1b2c3d4e5f60718293a4b").IsObjectID())
	assert.False(t, Ref("65a1b2c3d4e5f60718293a4").IsObjectID())
	assert.False(t, Ref("zza1b2c3d4e5f60718293a4b").IsObjectID())
}

func TestRefs_DropsAbsent(t *testing.T) {
	got := Refs([]string{"a", "", " ", "b"})
	assert.Equal(t, []Ref{"a", "b"}, got)
}

func TestRefSet_OrderAndDedup(t *testing.T) {
	s := NewRefSet("b", "a", "b", "")
	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, []Ref{"b", "a", "c"}, s.Slice())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("z"))

	other := NewRefSet("d", "a")
	s.Union(other)
	assert.Equal(t, 4, s.Len())

	var nilSet *RefSet
	assert.Equal(t, 0, nilSet.Len())
	assert.False(t, nilSet.Has("a"))
}
