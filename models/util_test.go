package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "single", in: "web", want: []string{"web"}},
		{name: "trimmed", in: " web , prod ", want: []string{"web", "prod"}},
		{name: "empty segments dropped", in: "web,, ,prod,", want: []string{"web", "prod"}},
		{name: "only separators", in: " , ,", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTags(tt.in))
		})
	}
}

func TestHostTagList(t *testing.T) {
	h := Host{Tags: "db,primary"}
	assert.Equal(t, []string{"db", "primary"}, h.TagList())
}
