package form

// Project sections in display order
const (
	SectionBasic     SectionID = "basic"
	SectionTimeline  SectionID = "timeline"
	SectionWorkers   SectionID = "workers"
	SectionSuppliers SectionID = "suppliers"
	SectionRisks     SectionID = "risks"
)

// SectionMain is the only section of single-page forms
const SectionMain SectionID = "main"

func bound(f float64) *float64 { return &f }

var statusOptions = []Option{
	{Value: "planning", Label: "Planning"},
	{Value: "in_progress", Label: "In Progress"},
	{Value: "completed", Label: "Completed"},
	{Value: "on_hold", Label: "On Hold"},
}

// ProjectSchema is the project create and edit form
var ProjectSchema = MustSchema("project",
	[]SectionID{SectionBasic, SectionTimeline, SectionWorkers, SectionSuppliers, SectionRisks},
	[]FieldSpec{
		{Name: "title", Label: "Project Title", Kind: KindText, Section: SectionBasic, Required: true, Placeholder: "Metro Bridge"},
		{Name: "description", Kind: KindText, Section: SectionBasic, Multiline: true},
		{Name: "detailed_description", Label: "Detailed Description", Kind: KindText, Section: SectionBasic, Multiline: true},
		{Name: "location", Kind: KindText, Section: SectionBasic},
		{Name: "latitude", Kind: KindNumber, Section: SectionBasic, Nullable: true, Min: bound(-90), Max: bound(90)},
		{Name: "longitude", Kind: KindNumber, Section: SectionBasic, Nullable: true, Min: bound(-180), Max: bound(180)},
		{Name: "status", Kind: KindEnum, Section: SectionBasic, Options: statusOptions},
		{Name: "budget", Kind: KindNumber, Section: SectionBasic, NonNegative: true},
		{Name: "current_spending", Label: "Current Spending", Kind: KindNumber, Section: SectionBasic, NonNegative: true},

		{Name: "start_date", Label: "Start Date", Kind: KindDate, Section: SectionTimeline, Required: true, Placeholder: "YYYY-MM-DD"},
		{Name: "end_date", Label: "End Date", Kind: KindDate, Section: SectionTimeline, Required: true, Placeholder: "YYYY-MM-DD"},

		{Name: "estimated_workers", Label: "Estimated Workers", Kind: KindNumber, Section: SectionWorkers, NonNegative: true},
		{Name: "resource_allocation", Label: "Resource Allocation", Kind: KindText, Section: SectionWorkers, Multiline: true},
		{Name: "equipment_requirements", Label: "Equipment Requirements", Kind: KindText, Section: SectionWorkers, Multiline: true},

		{Name: "supply_chain_requirements", Label: "Supply Chain Requirements", Kind: KindText, Section: SectionSuppliers, Multiline: true},

		{Name: "risk_assessment", Label: "Risk Assessment", Kind: KindText, Section: SectionRisks, Multiline: true},
		{Name: "mitigation_strategies", Label: "Mitigation Strategies", Kind: KindText, Section: SectionRisks, Multiline: true},
	},
	DateOrder("start_date", "end_date"),
).WithTitles(map[SectionID]string{
	SectionBasic:     "Basic Info",
	SectionTimeline:  "Timeline",
	SectionWorkers:   "Workers & Resources",
	SectionSuppliers: "Supply Chain",
	SectionRisks:     "Risks",
})

// WorkerSchema assigns a worker to a project by email
var WorkerSchema = MustSchema("worker", []SectionID{SectionMain}, []FieldSpec{
	{Name: "email", Label: "Worker Email", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "role_description", Label: "Role", Kind: KindText, Section: SectionMain},
})

// SupplierSchema adds a supplier to a project
var SupplierSchema = MustSchema("supplier", []SectionID{SectionMain}, []FieldSpec{
	{Name: "name", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "contact_person", Label: "Contact Person", Kind: KindText, Section: SectionMain},
	{Name: "contact_email", Label: "Contact Email", Kind: KindText, Section: SectionMain},
	{Name: "contact_phone", Label: "Contact Phone", Kind: KindText, Section: SectionMain},
	{Name: "materials_provided", Label: "Materials Provided", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "reliability_score", Label: "Reliability Score", Kind: KindNumber, Section: SectionMain, Min: bound(0), Max: bound(100), Default: 80},
	{Name: "lead_time_days", Label: "Lead Time (days)", Kind: KindNumber, Section: SectionMain, NonNegative: true, Default: 7},
})

// RiskSchema adds a risk to a project
var RiskSchema = MustSchema("risk", []SectionID{SectionMain}, []FieldSpec{
	{Name: "title", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "description", Kind: KindText, Section: SectionMain, Required: true, Multiline: true},
	{Name: "risk_level", Label: "Level", Kind: KindEnum, Section: SectionMain, Default: "medium", Options: []Option{
		{Value: "low", Label: "Low"},
		{Value: "medium", Label: "Medium"},
		{Value: "high", Label: "High"},
		{Value: "critical", Label: "Critical"},
	}},
	{Name: "risk_category", Label: "Category", Kind: KindEnum, Section: SectionMain, Default: "other", Options: []Option{
		{Value: "safety", Label: "Safety"},
		{Value: "financial", Label: "Financial"},
		{Value: "schedule", Label: "Schedule"},
		{Value: "technical", Label: "Technical"},
		{Value: "environmental", Label: "Environmental"},
		{Value: "other", Label: "Other"},
	}},
	{Name: "probability", Kind: KindNumber, Section: SectionMain, Min: bound(0), Max: bound(1), Default: 0.5},
	{Name: "impact", Kind: KindNumber, Section: SectionMain, Min: bound(1), Max: bound(10), Default: 5},
	{Name: "mitigation_plan", Label: "Mitigation Plan", Kind: KindText, Section: SectionMain, Multiline: true},
	{Name: "contingency_plan", Label: "Contingency Plan", Kind: KindText, Section: SectionMain, Multiline: true},
})

// TimelineEventSchema adds or edits a timeline event
var TimelineEventSchema = MustSchema("timeline_event", []SectionID{SectionMain}, []FieldSpec{
	{Name: "title", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "description", Kind: KindText, Section: SectionMain, Multiline: true},
	{Name: "start_date", Label: "Start Date", Kind: KindDate, Section: SectionMain, Required: true, Placeholder: "YYYY-MM-DD"},
	{Name: "end_date", Label: "End Date", Kind: KindDate, Section: SectionMain, Required: true, Placeholder: "YYYY-MM-DD"},
	{Name: "completion_percentage", Label: "Completion %", Kind: KindNumber, Section: SectionMain, Min: bound(0), Max: bound(100)},
	{Name: "is_milestone", Label: "Milestone", Kind: KindBoolean, Section: SectionMain},
}, DateOrder("start_date", "end_date"))

// SignInSchema is the login form
var SignInSchema = MustSchema("sign_in", []SectionID{SectionMain}, []FieldSpec{
	{Name: "username", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "password", Kind: KindText, Section: SectionMain, Required: true},
})

// SignUpSchema is the registration form
var SignUpSchema = MustSchema("sign_up", []SectionID{SectionMain}, []FieldSpec{
	{Name: "username", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "email", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "first_name", Label: "First Name", Kind: KindText, Section: SectionMain},
	{Name: "last_name", Label: "Last Name", Kind: KindText, Section: SectionMain},
	{Name: "role", Kind: KindEnum, Section: SectionMain, Default: "worker", Options: []Option{
		{Value: "worker", Label: "Worker"},
		{Value: "supervisor", Label: "Supervisor"},
	}},
	{Name: "password", Kind: KindText, Section: SectionMain, Required: true},
	{Name: "password2", Label: "Confirm Password", Kind: KindText, Section: SectionMain, Required: true},
}, Matching("password", "password2", "Passwords do not match."))

// Secret reports whether a field's input should be masked
func Secret(name string) bool {
	return name == "password" || name == "password2"
}
