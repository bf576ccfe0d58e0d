package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"clean", "hello there friend", 0},
		{"two words mixed case", "NIGGA nigga", 2},
		{"hard r", "Nigger", 1},
		{"slash variant", `/\/igga`, 1},
		{"pipe variant", `|\/iGGer`, 1},
		{"all variants", `nigga /\/igga |\/igga nigger /\/igger |\/igger`, 6},
		{"split by spaces", "n i g g a", 1},
		{"split by tabs and newlines", "ni\tgg\na", 1},
		{"unicode whitespace", "nig ga nigga", 2},
		{"repeated without separator", "niggaNIGGAnigga", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Count(tc.in))
		})
	}
}

func TestCountWhitespaceInsensitive(t *testing.T) {
	base := Count("nigga nigger")
	for _, in := range []string{"  nigga nigger  ", "nigganigger", "\nnigga\t\tnigger\r\n"} {
		assert.Equal(t, base, Count(in), in)
	}
}

func TestCountDeterministic(t *testing.T) {
	in := "some NiGgA text with |\\/igger inside"
	first := Count(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Count(in))
	}
}

// 去掉空白后跨词边界也会命中
func TestCountMatchesAcrossWordBoundaries(t *testing.T) {
	assert.Equal(t, 1, Count("begin igga"))
}

// 目标词各自独立计数再求和：重叠的目标表会对同一片段重复计数
func TestCountTargetsOverlapIsAdditive(t *testing.T) {
	assert.Equal(t, 3, countTargets("abab", []string{"ab", "bab"}))
	assert.Equal(t, 2, countTargets("nigga", []string{"nigga", "igga"}))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "abc", Normalize(" A\tb\nC "))
	assert.Equal(t, "", Normalize(" 　  "))
}
