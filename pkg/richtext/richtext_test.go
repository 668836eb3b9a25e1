package richtext_test

import (
	"testing"

	"github.com/niksmo/naran-storefront/pkg/richtext"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := richtext.New()

	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "Markdown",
			src:      "Soft **cotton** tee",
			contains: []string{"<p>Soft <strong>cotton</strong> tee</p>"},
		},
		{
			name:     "InlineHTML",
			src:      "<b>100%</b> linen",
			contains: []string{"<b>100%</b> linen"},
		},
		{
			name:     "ScriptStripped",
			src:      `Nice<script>alert("x")</script> fit`,
			excludes: []string{"<script", "alert"},
		},
		{
			name:     "HandlersStripped",
			src:      `<img src="/tee.png" onerror="steal()">`,
			contains: []string{`src="/tee.png"`},
			excludes: []string{"onerror"},
		},
		{
			name:     "LinksNoFollow",
			src:      "[care guide](https://example.com/care)",
			contains: []string{`href="https://example.com/care"`, `rel="nofollow"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(r.Render(tt.src))
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}

	t.Run("Blank", func(t *testing.T) {
		assert.Empty(t, r.Render("   \n"))
	})
}
