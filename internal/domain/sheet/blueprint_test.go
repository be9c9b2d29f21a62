package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBlueprint_Customers(t *testing.T) {
	bp := DefaultBlueprint()

	require.Len(t, bp.Sheets, 2)

	customers := bp.Sheets[0]
	assert.Equal(t, CustomersSlug, customers.Slug)
	assert.Equal(t, "Customers", customers.Name)

	byKey := make(map[string]FieldConfig, len(customers.Fields))
	for _, f := range customers.Fields {
		byKey[f.Key] = f
	}

	id, ok := byKey["customer_id"]
	require.True(t, ok)
	assert.True(t, id.Required)
	assert.True(t, id.Unique)

	parent, ok := byKey["parent_customer"]
	require.True(t, ok)
	require.NotNil(t, parent.Reference)
	assert.Equal(t, CustomersSlug, parent.Reference.SheetSlug)
	assert.Equal(t, "has-one", parent.Reference.Relationship)

	verified, ok := byKey["verified"]
	require.True(t, ok)
	assert.Equal(t, FieldBool, verified.Type)

	require.Len(t, customers.Actions, 1)
	assert.Equal(t, DedupeCustomersAction, customers.Actions[0].Slug)
	assert.Equal(t, ActionBackground, customers.Actions[0].Mode)
}

func TestDefaultBlueprint_PaymentProfiles(t *testing.T) {
	bp := DefaultBlueprint()

	profiles := bp.Sheets[1]
	assert.Equal(t, PaymentProfilesSlug, profiles.Slug)
	require.Len(t, profiles.Fields, 1)

	ref := profiles.Fields[0]
	assert.Equal(t, "customer_id", ref.Key)
	require.NotNil(t, ref.Reference)
	assert.Equal(t, CustomersSlug, ref.Reference.SheetSlug)
}

func TestFindBySlug(t *testing.T) {
	sheets := []Sheet{
		{ID: "sh-1", Slug: "orders"},
		{ID: "sh-2", Slug: "inventory"},
	}

	s, ok := FindBySlug(sheets, "inventory")
	require.True(t, ok)
	assert.Equal(t, "sh-2", s.ID)

	_, ok = FindBySlug(sheets, "missing")
	assert.False(t, ok)
}
