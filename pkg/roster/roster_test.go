// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-paktools.
//
// go-paktools is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package roster

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listFixture = `**1011 - Hulk:**
> - 1011002 - Bruce Banner
> - 1011003 - Immortal Hulk

**1014 - The Punisher:**
> - 1014002 - Cosmic Ghost Rider
`

func TestParseList(t *testing.T) {
	records, err := ParseList(strings.NewReader(listFixture))
	require.NoError(t, err)

	want := []Record{
		{Name: "Hulk", ID: "1011", SkinID: "1011001", SkinName: "Default"},
		{Name: "Hulk", ID: "1011", SkinID: "1011002", SkinName: "Bruce Banner"},
		{Name: "Hulk", ID: "1011", SkinID: "1011003", SkinName: "Immortal Hulk"},
		{Name: "The Punisher", ID: "1014", SkinID: "1014001", SkinName: "Default"},
		{Name: "The Punisher", ID: "1014", SkinID: "1014002", SkinName: "Cosmic Ghost Rider"},
	}
	assert.Equal(t, want, records)
}

func TestParseList_IndentedAndCRLF(t *testing.T) {
	input := "  **1021 - Hawkeye:**  \r\n\t-   1021100 - Ronin\r\n"
	records, err := ParseList(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{Name: "Hawkeye", ID: "1021", SkinID: "1021100", SkinName: "Ronin"}, records[1])
}

func TestParseList_NameContainingSeparator(t *testing.T) {
	input := "**1033 - Black Widow:**\n> - 1033200 - Widow - Red Room\n"
	records, err := ParseList(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Widow - Red Room", records[1].SkinName)
}

func TestParseList_Empty(t *testing.T) {
	records, err := ParseList(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestParseList_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		line    int
	}{
		{
			name:    "header without separator",
			input:   "**1011 Hulk:**\n",
			wantErr: ErrMalformedLine,
			line:    1,
		},
		{
			name:    "skin without separator",
			input:   "**1011 - Hulk:**\n> - 1011002 Bruce\n",
			wantErr: ErrMalformedLine,
			line:    2,
		},
		{
			name:    "skin before header",
			input:   "> - 1011002 - Bruce Banner\n**1011 - Hulk:**\n",
			wantErr: ErrUnknownCharacter,
			line:    1,
		},
		{
			name:    "skin for other character",
			input:   "**1011 - Hulk:**\n\n> - 1022002 - Stranger\n",
			wantErr: ErrUnknownCharacter,
			line:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseList(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var lineErr *LineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.line, lineErr.Line)
			assert.Contains(t, err.Error(), "line")
		})
	}
}

const markdownFixture = `# Roster

## • Hulk
### Bruce Banner
> 1011002

### Immortal Hulk
> 1011003
> 1011053

## Moon Knight
### • Golden Moonlight •
> 1030500

Paragraphs outside quotes are ignored.
`

func TestParseMarkdown(t *testing.T) {
	records, err := ParseMarkdown(strings.NewReader(markdownFixture))
	require.NoError(t, err)

	want := []Record{
		{Name: "Hulk", SkinID: "1011002", SkinName: "Bruce Banner"},
		{Name: "Hulk", SkinID: "1011003", SkinName: "Immortal Hulk"},
		{Name: "Hulk", SkinID: "1011053", SkinName: "Immortal Hulk"},
		{Name: "Moon Knight", SkinID: "1030500", SkinName: "Golden Moonlight"},
	}
	assert.Equal(t, want, records)
}

func TestParseMarkdown_QuoteBeforeNames(t *testing.T) {
	input := "> 1011002\n\n## Hulk\n\n> 1011003\n\n### Bruce Banner\n\n> 1011004\n"
	records, err := ParseMarkdown(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "1011004", records[0].SkinID)
}

func TestParseMarkdown_SkinNameCarriesAcrossCharacters(t *testing.T) {
	input := "## Hulk\n### Classic\n> 1011001\n\n## Thor\n> 1039001\n"
	records, err := ParseMarkdown(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, Record{Name: "Thor", SkinID: "1039001", SkinName: "Classic"}, records[1])
}

func TestParseMarkdown_Normalizes(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	input := "## Pe\u0301ne\u0301lope\n### Default\n> 1050001\n"
	records, err := ParseMarkdown(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "P\u00e9n\u00e9lope", records[0].Name)
}

func TestParseMarkdown_LineRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain line after quote is not a skin ID",
			input: "## Hulk\n### Classic\n> 1011001\nnote: retired skin\n",
			want:  []string{"1011001"},
		},
		{
			name:  "indented quote",
			input: "## Hulk\n### Classic\n    > 1011001\n",
			want:  []string{"1011001"},
		},
		{
			name:  "bullet before quote",
			input: "## Hulk\n### Classic\n• > 1011001\n",
			want:  []string{"1011001"},
		},
		{
			name:  "quote marker without space",
			input: "## Hulk\n### Classic\n>1011001\n",
			want:  []string{},
		},
		{
			name:  "setext heading does not name a character",
			input: "Hulk\n----\n### Classic\n> 1011001\n",
			want:  []string{},
		},
		{
			name:  "blank quote line",
			input: "## Hulk\n### Classic\n>  \n> 1011002\n",
			want:  []string{"1011002"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseMarkdown(strings.NewReader(tt.input))
			require.NoError(t, err)

			got := make([]string, 0, len(records))
			for _, r := range records {
				got = append(got, r.SkinID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseList_KeepsNamesVerbatim(t *testing.T) {
	input := "**1050 - Pe\u0301ne\u0301lope:**\n> - 1050100 - • Starlight •\n"
	records, err := ParseList(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Pe\u0301ne\u0301lope", records[0].Name)
	assert.Equal(t, "• Starlight •", records[1].SkinName)
}

func TestParse_Dispatch(t *testing.T) {
	records, err := Parse(FormatList, strings.NewReader(listFixture))
	require.NoError(t, err)
	assert.Len(t, records, 5)

	records, err = Parse(FormatMarkdown, strings.NewReader(markdownFixture))
	require.NoError(t, err)
	assert.Len(t, records, 4)

	_, err = Parse(Format("csv"), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"list", FormatList, false},
		{"TXT", FormatList, false},
		{"markdown", FormatMarkdown, false},
		{" md ", FormatMarkdown, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []Record{
		{Name: "Hulk", ID: "1011", SkinID: "1011001", SkinName: "Default"},
		{Name: "Thor", SkinID: "1039001", SkinName: "Classic"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "\n    {\n        \"name\": \"Hulk\",")
	assert.Contains(t, out, "\"id\": \"1011\"")
	assert.Equal(t, 1, strings.Count(out, "\"id\""), "id is omitted when empty")

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Classic", decoded[1]["skin_name"])
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
