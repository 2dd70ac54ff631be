package mathtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PlainText(t *testing.T) {
	segs := Render("What is the average of 2, 4 and 6?")
	require.Len(t, segs, 1)
	assert.Equal(t, KindText, segs[0].Kind)
	assert.Equal(t, "What is the average of 2, 4 and 6?", segs[0].Content)
	assert.Nil(t, segs[0].Err)
}

func TestRender_Empty(t *testing.T) {
	assert.Nil(t, Render(""))
}

func TestRender_InlineAndBlock(t *testing.T) {
	segs := Render(`Let $x^2 = 4$. Then $$x = \pm 2$$ holds.`)
	require.Len(t, segs, 5)

	assert.Equal(t, Segment{Kind: KindText, Content: "Let "}, segs[0])
	assert.Equal(t, Segment{Kind: KindInline, Content: "x^2 = 4"}, segs[1])
	assert.Equal(t, Segment{Kind: KindText, Content: ". Then "}, segs[2])
	assert.Equal(t, Segment{Kind: KindBlock, Content: `x = \pm 2`}, segs[3])
	assert.Equal(t, Segment{Kind: KindText, Content: " holds."}, segs[4])
}

func TestRender_NormalisesAlternateDelimiters(t *testing.T) {
	segs := Render(`Area is \(\pi r^2\) and \[\frac{a}{b}\]`)
	require.Len(t, segs, 4)
	assert.Equal(t, Segment{Kind: KindInline, Content: `\pi r^2`}, segs[1])
	assert.Equal(t, Segment{Kind: KindBlock, Content: `\frac{a}{b}`}, segs[3])
}

func TestRender_PreservesOrderAndText(t *testing.T) {
	in := `a $b$ c $$d$$ e $f$`
	segs := Render(in)
	assert.Equal(t, in, PlainText(segs))
	assert.False(t, HasErrors(segs))
}

func TestRender_DegradesMalformedMath(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty inline", "x $$ y"},
		{"blank block", "x $$  $$ y"},
		{"unbalanced open brace", `$\frac{1}{2$`},
		{"unbalanced close brace", `$a}$`},
		{"unclosed environment", `$$\begin{matrix} a & b$$`},
		{"mismatched environment", `$$\begin{matrix} a \end{cases}$$`},
		{"left without right", `$\left( x$`},
		{"right without left", `$x \right)$`},
		{"trailing backslash", `$x \$`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			segs := Render(tc.in)
			require.True(t, HasErrors(segs))

			var degraded *Segment
			for i := range segs {
				if segs[i].Err != nil {
					degraded = &segs[i]
				}
			}
			require.NotNil(t, degraded)
			assert.Equal(t, KindText, degraded.Kind)
			assert.Equal(t, degraded.Err.Raw, degraded.Content)
			assert.NotEmpty(t, degraded.Err.Reason)
			assert.Contains(t, degraded.Err.Error(), "render math")
		})
	}
}

func TestRender_WellFormedConstructs(t *testing.T) {
	cases := []string{
		`$\left( \frac{a}{b} \right)$`,
		`$\left. x \right|$`,
		`$$\begin{cases} x & y \\ z & w \end{cases}$$`,
		`$a \leftarrow b$`,
		`$\{1, 2\}$`,
	}
	for _, in := range cases {
		segs := Render(in)
		require.Len(t, segs, 1, in)
		assert.Nil(t, segs[0].Err, in)
		assert.NotEqual(t, KindText, segs[0].Kind, in)
	}
}

func TestRender_LocalFailureDoesNotAffectNeighbours(t *testing.T) {
	segs := Render(`ok $a+b$ bad $\frac{1$ fine $c$`)
	require.Len(t, segs, 6)
	assert.Equal(t, KindInline, segs[1].Kind)
	assert.Equal(t, KindText, segs[3].Kind)
	assert.NotNil(t, segs[3].Err)
	assert.Equal(t, KindInline, segs[5].Kind)
}
