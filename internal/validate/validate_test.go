package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var applicationRules = Rules{
	Required: []string{"name", "email", "insuranceType", "coverage", "paymentTerm"},
	Enums: []EnumRule{
		{Field: "insuranceType", Allowed: InsuranceTypes},
		{Field: "paymentTerm", Allowed: PaymentTerms},
		{Field: "healthCondition", Allowed: HealthConditions, Optional: true},
		{Field: "status", Allowed: Statuses, Optional: true},
	},
}

func validApplication() map[string]interface{} {
	return map[string]interface{}{
		"name":          "Jamila Khatun",
		"email":         "jamila@example.com",
		"insuranceType": "life",
		"coverage":      500000.0,
		"paymentTerm":   "monthly",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, applicationRules.Validate(validApplication()))
}

func TestValidate_MissingRequiredNamesField(t *testing.T) {
	for _, field := range applicationRules.Required {
		doc := validApplication()
		delete(doc, field)
		err := applicationRules.Validate(doc)
		require.Error(t, err)
		require.Equal(t, field+" is required", err.Error())
	}
}

func TestValidate_EmptyValuesCountAsMissing(t *testing.T) {
	for _, v := range []interface{}{nil, "", false, 0.0, []interface{}{}, map[string]interface{}{}} {
		doc := validApplication()
		doc["name"] = v
		err := applicationRules.Validate(doc)
		require.Error(t, err, "value %#v should be treated as missing", v)
		require.Equal(t, "name is required", err.Error())
	}
}

func TestValidate_EnumViolationListsAllowed(t *testing.T) {
	doc := validApplication()
	doc["insuranceType"] = "car"
	err := applicationRules.Validate(doc)
	require.Error(t, err)
	require.Equal(t, "Invalid insuranceType. Allowed: life, health, vehicle", err.Error())
}

func TestValidate_EnumIsCaseSensitive(t *testing.T) {
	doc := validApplication()
	doc["paymentTerm"] = "Monthly"
	require.Error(t, applicationRules.Validate(doc))
}

func TestValidate_OptionalEnumOnlyWhenPresent(t *testing.T) {
	doc := validApplication()
	require.NoError(t, applicationRules.Validate(doc))

	doc["healthCondition"] = "maybe"
	err := applicationRules.Validate(doc)
	require.Error(t, err)
	require.Equal(t, "Invalid healthCondition. Allowed: Yes, No", err.Error())

	doc["healthCondition"] = "No"
	require.NoError(t, applicationRules.Validate(doc))
}

func TestValidate_RequiredCheckedBeforeEnums(t *testing.T) {
	doc := validApplication()
	delete(doc, "name")
	doc["insuranceType"] = "car"
	err := applicationRules.Validate(doc)
	require.Equal(t, "name is required", err.Error())
}

func TestValidatePartial(t *testing.T) {
	// Absent fields are fine.
	require.NoError(t, applicationRules.ValidatePartial(map[string]interface{}{"coverage": 100.0}))

	// Present enum fields are still checked.
	err := applicationRules.ValidatePartial(map[string]interface{}{"status": "Done"})
	require.Error(t, err)
	require.Equal(t, "Invalid status. Allowed: Pending, Accepted, Rejected", err.Error())

	require.NoError(t, applicationRules.ValidatePartial(map[string]interface{}{"status": "Accepted"}))
}
