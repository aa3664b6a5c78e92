package script

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubDetector struct {
	probability float64
	calls       int
}

func (d *stubDetector) GetZawgyiProbability(string) float64 {
	d.calls++
	return d.probability
}

func TestContainsMyanmar(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"ascii only", "mingalarbar", false},
		{"empty", "", false},
		{"unicode myanmar", "မင်္ဂလာပါ", true},
		{"mixed", "hello မ world", true},
		{"block start", string(rune(0x1000)), true},
		{"block end", string(rune(0x109F)), true},
		{"just below block", string(rune(0x0FFF)), false},
		{"just above block", string(rune(0x10A0)), false},
		{"extended-a is outside", string(rune(0xAA60)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsMyanmar(tt.text))
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	converter := ConverterFunc(func(s string) string { return "converted:" + s })

	t.Run("converts when probability above threshold", func(t *testing.T) {
		n := NewNormalizerWith(&stubDetector{probability: 0.97}, converter, nil)

		res := n.NormalizeDetailed("zawgyi")

		assert.True(t, res.Converted)
		assert.Equal(t, "converted:zawgyi", res.Text)
		assert.Equal(t, 0.97, res.ZawgyiProbability)
	})

	t.Run("leaves text unchanged at exactly the threshold", func(t *testing.T) {
		n := NewNormalizerWith(&stubDetector{probability: 0.5}, converter, nil)

		res := n.NormalizeDetailed("borderline")

		assert.False(t, res.Converted)
		assert.Equal(t, "borderline", res.Text)
	})

	t.Run("leaves unicode text unchanged", func(t *testing.T) {
		n := NewNormalizerWith(&stubDetector{probability: 0.01}, converter, nil)

		assert.Equal(t, "မင်္ဂလာပါ", n.Normalize("မင်္ဂလာပါ"))
	})

	t.Run("empty text skips the detector", func(t *testing.T) {
		d := &stubDetector{probability: 1}
		n := NewNormalizerWith(d, converter, nil)

		assert.Equal(t, "", n.Normalize(""))
		assert.Equal(t, 0, d.calls)
	})

	t.Run("idempotent on unicode input", func(t *testing.T) {
		n := NewNormalizerWith(&stubDetector{probability: 0.02}, converter, nil)

		for _, in := range []string{"မြန်မာ", "hello", "ကျေးဇူးတင်ပါတယ်"} {
			once := n.Normalize(in)
			assert.Equal(t, once, n.Normalize(once), in)
		}
	})

	t.Run("output is NFC", func(t *testing.T) {
		// U+0041 U+030A composes to U+00C5 under NFC.
		decomposed := ConverterFunc(func(string) string { return "A\u030A" })
		n := NewNormalizerWith(&stubDetector{probability: 0.9}, decomposed, nil)

		assert.Equal(t, "\u00C5", n.Normalize("x"))
	})

	t.Run("non-finite probability reported as zero", func(t *testing.T) {
		n := NewNormalizerWith(&stubDetector{probability: math.Inf(-1)}, converter, nil)

		res := n.NormalizeDetailed("hello")

		assert.False(t, res.Converted)
		assert.Equal(t, 0.0, res.ZawgyiProbability)
	})
}
