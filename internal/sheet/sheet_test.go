package sheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/banshee-data/rater-agreement/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"", LabelsByItems, false},
		{"labels-by-items", LabelsByItems, false},
		{"Items-By-Labels", ItemsByLabels, false},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrientation(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRead_LabelsByItems(t *testing.T) {
	c, err := Read(strings.NewReader(testutil.Rater2CSV), Options{Rater: "Cat"})
	require.NoError(t, err)

	assert.Equal(t, "Cat", c.Rater())
	assert.Equal(t, []string{"V1", "V2", "B1", "C1", "W1"}, c.Items())
	assert.Equal(t, []string{"rater", "Example Present", "Action Present", "Clarity", "Goal of articulation"}, c.Labels())

	v, ok := c.Value("C1", "Clarity")
	require.True(t, ok)
	assert.Equal(t, "4.0", v)

	v, ok = c.Value("W1", "Goal of articulation")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestRead_ItemsByLabels(t *testing.T) {
	in := "ID,Clarity,Action Present\nV1,4,Y\n4.0,3,N\n,9,Y\nB2,2\n"
	c, err := Read(strings.NewReader(in), Options{Rater: "x", Orientation: ItemsByLabels})
	require.NoError(t, err)

	assert.Equal(t, []string{"V1", "4", "B2"}, c.Items())
	assert.Equal(t, []string{"Clarity", "Action Present"}, c.Labels())
	v, _ := c.Value("4", "Clarity")
	assert.Equal(t, "3", v)
	// short rows are padded with empty cells
	v, ok := c.Value("B2", "Action Present")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestRead_NumericHeaders(t *testing.T) {
	c, err := Read(strings.NewReader("Label,4.0,5\nClarity,3,2\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5"}, c.Items())
}

func TestRead_DuplicateRowWarns(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	c, err := Read(strings.NewReader("Label,V1\nClarity,3\nClarity,4\n"), Options{Rater: "dup"})
	require.NoError(t, err)
	v, _ := c.Value("V1", "Clarity")
	assert.Equal(t, "4", v)
	require.Len(t, logs.Lines(), 1)
	assert.Contains(t, logs.Lines()[0], "duplicate row")
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""), Options{})
	assert.True(t, errors.Is(err, ErrEmptySheet))
}

func TestRead_Encodings(t *testing.T) {
	t.Run("utf-8 bom", func(t *testing.T) {
		in := "\xef\xbb\xbfLabel,V1\nClarity,3\n"
		c, err := Read(strings.NewReader(in), Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Clarity"}, c.Labels())
	})

	t.Run("windows-1252", func(t *testing.T) {
		raw, _, err := transform.Bytes(charmap.Windows1252.NewEncoder(), []byte("Label,V1\nTone,“Café”\n"))
		require.NoError(t, err)
		c, err := Read(bytes.NewReader(raw), Options{Encoding: EncodingWindows1252})
		require.NoError(t, err)
		v, _ := c.Value("V1", "Tone")
		assert.Equal(t, "“Café”", v)
	})

	t.Run("utf-16", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		raw, _, err := transform.Bytes(enc, []byte("Label,V1\nGoal,Inform\n"))
		require.NoError(t, err)
		c, err := Read(bytes.NewReader(raw), Options{Encoding: EncodingUTF16})
		require.NoError(t, err)
		v, _ := c.Value("V1", "Goal")
		assert.Equal(t, "Inform", v)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Read(strings.NewReader("a,b\n"), Options{Encoding: "ebcdic"})
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	r1, _ := testutil.WriteRaterSheets(t)
	c, err := Load(r1, Options{})
	require.NoError(t, err)
	assert.Equal(t, "sophie", c.Rater())
	assert.True(t, c.HasLabel("EX: quote"))

	_, err = Load(r1+".missing", Options{})
	assert.Error(t, err)
}
