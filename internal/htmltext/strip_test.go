package htmltext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrip(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "no markup here", "no markup here"},
		{"tags removed", "<p>Printer <b>broken</b></p>", "Printer broken"},
		{"nested markup", "<div><span>outer <em>inner</em></span></div>", "outer inner"},
		{"entities decoded", "a &amp; b &lt;ok&gt;", "a & b <ok>"},
		{"script body dropped", "<p>kept</p><script>alert(1)</script>", "kept"},
		{"style body dropped", "<style>p{color:red}</style>visible", "visible"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Strip(tc.in))
		})
	}
}

func TestStrip_UnclosedMarkup(t *testing.T) {
	require.Equal(t, "dangling", Strip("<p>dangling"))
}
