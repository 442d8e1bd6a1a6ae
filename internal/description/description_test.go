package description

import (
	"testing"

	"github.com/cuepointapp/cuepoint-server/internal/chapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsHTML(t *testing.T) {
	assert.True(t, ContainsHTML("<p>hello</p>"))
	assert.True(t, ContainsHTML("line<br/>line"))
	assert.True(t, ContainsHTML("<B>bold</B>"))
	assert.False(t, ContainsHTML("0:00 Intro"))
	assert.False(t, ContainsHTML("a < b and c > d"))
}

func TestNormalize_PlainTextUntouched(t *testing.T) {
	in := "Chapters\n0:00 Intro\n1:30 Setup"
	assert.Equal(t, in, Normalize(in))
}

func TestNormalize_CRLF(t *testing.T) {
	assert.Equal(t, "a\nb", Normalize("a\r\nb"))
}

func TestNormalize_HTMLDescriptionYieldsChapters(t *testing.T) {
	html := `<p>Learn Python.</p><p><b>Chapters</b><br>0:00 Intro<br>1:30 Setup &amp; install<br>10:00 Wrap up</p>`

	text := Normalize(html)
	got := chapters.Extract(text)

	require.Len(t, got, 3)
	assert.Equal(t, "Intro", got[0].Title)
	assert.Equal(t, "Setup & install", got[1].Title)
	assert.Equal(t, 600, got[2].Seconds)
}

func TestNormalize_ListItems(t *testing.T) {
	html := `<p>Contents</p><ul><li>0:00 Welcome</li><li>2:15 Variables</li></ul>`

	got := chapters.Extract(Normalize(html))

	require.Len(t, got, 2)
	assert.Equal(t, "Welcome", got[0].Title)
	assert.Equal(t, 135, got[1].Seconds)
}
