package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

func TestParseDiscoveryText_RFPHeaders(t *testing.T) {
	text := `REQUEST FOR PRODUCTION NO. 1: All bank statements for the years 2020-2023.

REQUEST FOR PRODUCTION NO. 2: All correspondence between
the parties regarding the disputed contract.

RFP #3 - All tax returns.`

	parsed := ParseDiscoveryText(text)
	require.Len(t, parsed, 3)

	assert.Equal(t, dtypes.RequestTypeRFP, parsed[0].Type)
	assert.Equal(t, 1, parsed[0].Number)
	assert.Equal(t, "All bank statements for the years 2020-2023.", parsed[0].Text)

	assert.Equal(t, 2, parsed[1].Number)
	assert.Equal(t, "All correspondence between\nthe parties regarding the disputed contract.", parsed[1].Text)

	assert.Equal(t, 3, parsed[2].Number)
	assert.Equal(t, "All tax returns.", parsed[2].Text)
}

func TestParseDiscoveryText_Interrogatories(t *testing.T) {
	text := `INTERROGATORY NO. 1: State all facts supporting your denial.
INTERROGATORY NO. 2: Identify every person with knowledge of the incident.`

	parsed := ParseDiscoveryText(text)
	require.Len(t, parsed, 2)
	assert.Equal(t, dtypes.RequestTypeInterrogatory, parsed[0].Type)
	assert.Equal(t, 1, parsed[0].Number)
	assert.Equal(t, dtypes.RequestTypeInterrogatory, parsed[1].Type)
	assert.Equal(t, 2, parsed[1].Number)
}

func TestParseDiscoveryText_MixedTypes(t *testing.T) {
	text := `REQUEST FOR PRODUCTION NO. 1: All employment records.
INTERROGATORY NO. 1: State your full employment history.`

	parsed := ParseDiscoveryText(text)
	require.Len(t, parsed, 2)
	assert.Equal(t, dtypes.RequestTypeRFP, parsed[0].Type)
	assert.Equal(t, dtypes.RequestTypeInterrogatory, parsed[1].Type)
}

func TestParseDiscoveryText_CSV(t *testing.T) {
	text := `type,number,text
RFP,1,All bank statements for 2020.
Interrogatory,2,"State all facts, including dates, for each denial."
RFP,3,All tax returns.`

	parsed := ParseDiscoveryText(text)
	require.Len(t, parsed, 3)

	assert.Equal(t, dtypes.RequestTypeRFP, parsed[0].Type)
	assert.Equal(t, "All bank statements for 2020.", parsed[0].Text)

	assert.Equal(t, dtypes.RequestTypeInterrogatory, parsed[1].Type)
	assert.Equal(t, 2, parsed[1].Number)
	assert.Equal(t, `State all facts, including dates, for each denial.`, parsed[1].Text)
}

func TestParseDiscoveryText_CSVSkipsMalformedRows(t *testing.T) {
	text := `type,number,text
RFP,1,All bank statements.
Subpoena,2,Not a recognized type.
RFP,abc,Bad number.
RFP,3,
RFP,4,All tax returns.`

	parsed := ParseDiscoveryText(text)
	require.Len(t, parsed, 2)
	assert.Equal(t, 1, parsed[0].Number)
	assert.Equal(t, 4, parsed[1].Number)
}

func TestParseDiscoveryText_CSVHeaderExcludesFreeTextPatterns(t *testing.T) {
	// Once the header is seen, item-header lines are CSV rows, not items.
	text := `type,number,text
REQUEST FOR PRODUCTION NO. 1: All documents.`

	parsed := ParseDiscoveryText(text)
	assert.Empty(t, parsed)
}

func TestParseDiscoveryText_Empty(t *testing.T) {
	assert.Empty(t, ParseDiscoveryText(""))
	assert.Empty(t, ParseDiscoveryText("This letter responds to your inquiry."))
}

func TestParseDiscoveryText_ContinuationStopsAtBlankLine(t *testing.T) {
	text := `REQUEST FOR PRODUCTION NO. 1: All documents relating
to the accounts.

This trailing paragraph is not part of any request.`

	parsed := ParseDiscoveryText(text)
	require.Len(t, parsed, 1)
	assert.Equal(t, "All documents relating\nto the accounts.", parsed[0].Text)
}

func TestParseDiscoveryText_ContinuationKeepsLineBreaks(t *testing.T) {
	text := "RFP 1: All invoices issued to:\n(a) Acme Corp;\n(b) Beta LLC.\n"

	parsed := ParseDiscoveryText(text)
	require.Len(t, parsed, 1)
	assert.Equal(t, "All invoices issued to:\n(a) Acme Corp;\n(b) Beta LLC.", parsed[0].Text)
}

func TestNormalizeType(t *testing.T) {
	got, ok := normalizeType(" RFP ")
	assert.True(t, ok)
	assert.Equal(t, dtypes.RequestTypeRFP, got)

	got, ok = normalizeType("interrogatory")
	assert.True(t, ok)
	assert.Equal(t, dtypes.RequestTypeInterrogatory, got)

	_, ok = normalizeType("subpoena")
	assert.False(t, ok)
}
