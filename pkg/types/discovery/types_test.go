package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestType_IsValid(t *testing.T) {
	assert.True(t, RequestTypeRFP.IsValid())
	assert.True(t, RequestTypeInterrogatory.IsValid())
	assert.False(t, RequestType("Subpoena").IsValid())
}

func TestRequestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusIncomplete.IsValid())
	assert.True(t, StatusPartial.IsValid())
	assert.True(t, StatusComplete.IsValid())
	assert.False(t, RequestStatus("done").IsValid())
}

func TestMappingSource_IsValid(t *testing.T) {
	assert.True(t, SourceAISuggestion.IsValid())
	assert.True(t, SourceManualAddition.IsValid())
	assert.False(t, MappingSource("import").IsValid())
}

func TestMappingStatus_IsReviewed(t *testing.T) {
	assert.False(t, MappingSuggested.IsReviewed())
	assert.True(t, MappingAccepted.IsReviewed())
	assert.True(t, MappingRejected.IsReviewed())
}

func TestCategory_IsValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, Category("Taxes").IsValid())
}

func TestCategories_DeclarationOrder(t *testing.T) {
	// Detection ties break on this order; it is part of the contract.
	assert.Equal(t, []Category{
		CategoryFinancial,
		CategoryMedical,
		CategoryEmployment,
		CategoryProperty,
		CategoryLegal,
		CategoryPersonal,
	}, Categories)
}
