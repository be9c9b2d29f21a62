package sheet

// FieldType enumerates the field types the platform schema supports
type FieldType string

const (
	FieldString    FieldType = "string"
	FieldNumber    FieldType = "number"
	FieldBool      FieldType = "boolean"
	FieldReference FieldType = "reference"
)

// ReferenceConfig describes a has-one relationship to another sheet
type ReferenceConfig struct {
	SheetSlug    string `json:"sheet"`
	Relationship string `json:"relationship"`
}

// FieldConfig declares one field of a sheet schema
type FieldConfig struct {
	Key       string           `json:"key"`
	Label     string           `json:"label"`
	Type      FieldType        `json:"type"`
	Required  bool             `json:"required,omitempty"`
	Unique    bool             `json:"unique,omitempty"`
	Reference *ReferenceConfig `json:"reference,omitempty"`
}

// ActionMode controls how the platform executes a custom sheet action
type ActionMode string

const (
	ActionForeground ActionMode = "foreground"
	ActionBackground ActionMode = "background"
)

// ActionConfig declares a custom action on a sheet
type ActionConfig struct {
	Slug  string     `json:"slug"`
	Label string     `json:"label"`
	Mode  ActionMode `json:"mode"`
}

// SheetConfig declares one sheet of the blueprint
type SheetConfig struct {
	Slug    string         `json:"slug"`
	Name    string         `json:"name"`
	Fields  []FieldConfig  `json:"fields"`
	Actions []ActionConfig `json:"actions,omitempty"`
}

// Blueprint is the full schema pushed to a freshly created workspace
type Blueprint struct {
	Name   string        `json:"name"`
	Sheets []SheetConfig `json:"sheets"`
}

// Blueprint sheet slugs
const (
	CustomersSlug       = "customers"
	PaymentProfilesSlug = "payment_profiles"
)

// DedupeCustomersAction is the slug of the background dedupe action on the
// Customers sheet. The dedupe itself runs on the platform.
const DedupeCustomersAction = "dedupe-customers"

// DefaultBlueprint returns the schema declared for new workspaces: a
// Customers sheet with a self-referencing parent link and a Payment
// Profiles sheet keyed by customer.
func DefaultBlueprint() Blueprint {
	return Blueprint{
		Name: "Customer onboarding",
		Sheets: []SheetConfig{
			{
				Slug: CustomersSlug,
				Name: "Customers",
				Fields: []FieldConfig{
					{Key: "customer_id", Label: "Customer ID", Type: FieldString, Required: true, Unique: true},
					{
						Key:   "parent_customer",
						Label: "Parent Customer",
						Type:  FieldReference,
						Reference: &ReferenceConfig{
							SheetSlug:    CustomersSlug,
							Relationship: "has-one",
						},
					},
					{Key: "first_name", Label: "First Name", Type: FieldString},
					{Key: "last_name", Label: "Last Name", Type: FieldString},
					{Key: "email", Label: "Email", Type: FieldString},
					{Key: "verified", Label: "Verified", Type: FieldBool},
				},
				Actions: []ActionConfig{
					{Slug: DedupeCustomersAction, Label: "Dedupe customers", Mode: ActionBackground},
				},
			},
			{
				Slug: PaymentProfilesSlug,
				Name: "Payment Profiles",
				Fields: []FieldConfig{
					{
						Key:   "customer_id",
						Label: "Customer ID",
						Type:  FieldReference,
						Reference: &ReferenceConfig{
							SheetSlug:    CustomersSlug,
							Relationship: "has-one",
						},
					},
				},
			},
		},
	}
}
