package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// User roles
const (
	RoleAdmin      = "admin"
	RoleWorker     = "worker"
	RoleSupervisor = "supervisor"
)

// Project statuses
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on_hold"
)

// ProjectStatuses returns the statuses in display order
func ProjectStatuses() []string {
	return []string{StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold}
}

// StatusLabel returns a human readable status
func StatusLabel(status string) string {
	switch status {
	case StatusPlanning:
		return "Planning"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusOnHold:
		return "On Hold"
	}
	return HumanizeKey(status)
}

// HumanizeKey turns snake_case keys into Title Case words
func HumanizeKey(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// Amount is a money or decimal quantity. The API serializes decimals as
// strings, so both numbers and numeric strings are accepted.
type Amount float64

// MarshalJSON writes the amount as a two decimal string, the way the API does
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(a), 'f', 2, 64))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

type User struct {
	ID             int     `json:"id" yaml:"id"`
	Username       string  `json:"username" yaml:"username"`
	Email          string  `json:"email" yaml:"email"`
	FirstName      string  `json:"first_name" yaml:"first_name"`
	LastName       string  `json:"last_name" yaml:"last_name"`
	Role           string  `json:"role" yaml:"role"`
	ProfilePicture *string `json:"profile_picture" yaml:"profile_picture,omitempty"`
}

// DisplayName prefers the full name and falls back to the username
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// IsSupervisor reports whether the user may create and edit projects
func (u *User) IsSupervisor() bool {
	return u != nil && u.Role == RoleSupervisor
}

type Project struct {
	ID                      int             `json:"id" yaml:"id"`
	Title                   string          `json:"title" yaml:"title"`
	Description             string          `json:"description" yaml:"description"`
	DetailedDescription     string          `json:"detailed_description" yaml:"detailed_description,omitempty"`
	Location                string          `json:"location" yaml:"location"`
	Latitude                *float64        `json:"latitude" yaml:"latitude,omitempty"`
	Longitude               *float64        `json:"longitude" yaml:"longitude,omitempty"`
	RiskAssessment          string          `json:"risk_assessment" yaml:"risk_assessment,omitempty"`
	MitigationStrategies    string          `json:"mitigation_strategies" yaml:"mitigation_strategies,omitempty"`
	SupplyChainRequirements string          `json:"supply_chain_requirements" yaml:"supply_chain_requirements,omitempty"`
	ResourceAllocation      string          `json:"resource_allocation" yaml:"resource_allocation,omitempty"`
	EquipmentRequirements   string          `json:"equipment_requirements" yaml:"equipment_requirements,omitempty"`
	StartDate               string          `json:"start_date" yaml:"start_date"`
	EndDate                 string          `json:"end_date" yaml:"end_date"`
	Status                  string          `json:"status" yaml:"status"`
	Supervisor              *User           `json:"supervisor" yaml:"supervisor,omitempty"`
	EstimatedWorkers        int             `json:"estimated_workers" yaml:"estimated_workers"`
	CurrentWorkerCount      int             `json:"current_worker_count" yaml:"current_worker_count"`
	Budget                  Amount          `json:"budget" yaml:"budget"`
	CurrentSpending         Amount          `json:"current_spending" yaml:"current_spending"`
	CreatedAt               string          `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt               string          `json:"updated_at" yaml:"updated_at,omitempty"`
	Workers                 []ProjectWorker `json:"workers,omitempty" yaml:"workers,omitempty"`
	Suppliers               []Supplier      `json:"suppliers,omitempty" yaml:"suppliers,omitempty"`
	TimelineEvents          []TimelineEvent `json:"timeline_events,omitempty" yaml:"timeline_events,omitempty"`
	Risks                   []Risk          `json:"risks,omitempty" yaml:"risks,omitempty"`
}

// BudgetUsed returns the share of the budget already spent, 0..1+
func (p *Project) BudgetUsed() float64 {
	if p.Budget <= 0 {
		return 0
	}
	return float64(p.CurrentSpending) / float64(p.Budget)
}

type ProjectWorker struct {
	ID                int     `json:"id" yaml:"id"`
	Project           int     `json:"project" yaml:"project"`
	Worker            *User   `json:"worker" yaml:"worker"`
	RoleDescription   string  `json:"role_description" yaml:"role_description,omitempty"`
	Skills            string  `json:"skills" yaml:"skills,omitempty"`
	PerformanceRating *Amount `json:"performance_rating" yaml:"performance_rating,omitempty"`
	AssignedAt        string  `json:"assigned_at" yaml:"assigned_at"`
}

type Supplier struct {
	ID                int    `json:"id" yaml:"id"`
	Project           int    `json:"project" yaml:"project"`
	Name              string `json:"name" yaml:"name"`
	ContactPerson     string `json:"contact_person" yaml:"contact_person"`
	ContactEmail      string `json:"contact_email" yaml:"contact_email"`
	ContactPhone      string `json:"contact_phone" yaml:"contact_phone"`
	MaterialsProvided string `json:"materials_provided" yaml:"materials_provided"`
	ReliabilityScore  Amount `json:"reliability_score" yaml:"reliability_score"`
	LeadTimeDays      int    `json:"lead_time_days" yaml:"lead_time_days"`
	CreatedAt         string `json:"created_at" yaml:"created_at,omitempty"`
}

type TimelineEvent struct {
	ID                   int    `json:"id" yaml:"id"`
	Project              int    `json:"project" yaml:"project"`
	Title                string `json:"title" yaml:"title"`
	Description          string `json:"description" yaml:"description"`
	StartDate            string `json:"start_date" yaml:"start_date"`
	EndDate              string `json:"end_date" yaml:"end_date"`
	CompletionPercentage int    `json:"completion_percentage" yaml:"completion_percentage"`
	IsMilestone          bool   `json:"is_milestone" yaml:"is_milestone"`
	ResponsiblePerson    *User  `json:"responsible_person" yaml:"responsible_person,omitempty"`
	CreatedAt            string `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt            string `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Risk levels
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

type Risk struct {
	ID              int     `json:"id" yaml:"id"`
	Project         int     `json:"project" yaml:"project"`
	Title           string  `json:"title" yaml:"title"`
	Description     string  `json:"description" yaml:"description"`
	RiskLevel       string  `json:"risk_level" yaml:"risk_level"`
	RiskCategory    string  `json:"risk_category" yaml:"risk_category"`
	Probability     Amount  `json:"probability" yaml:"probability"`
	Impact          int     `json:"impact" yaml:"impact"`
	MitigationPlan  string  `json:"mitigation_plan" yaml:"mitigation_plan,omitempty"`
	ContingencyPlan string  `json:"contingency_plan" yaml:"contingency_plan,omitempty"`
	IsResolved      bool    `json:"is_resolved" yaml:"is_resolved"`
	ResolvedDate    *string `json:"resolved_date" yaml:"resolved_date,omitempty"`
	CreatedAt       string  `json:"created_at" yaml:"created_at,omitempty"`
}

type ChatRoom struct {
	ID        int    `json:"id" yaml:"id"`
	Project   int    `json:"project" yaml:"project"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

type Message struct {
	ID           int    `json:"id" yaml:"id"`
	ChatRoom     int    `json:"chat_room" yaml:"chat_room"`
	Sender       *User  `json:"sender" yaml:"sender"`
	Content      string `json:"content" yaml:"content"`
	IsAIResponse bool   `json:"is_ai_response" yaml:"is_ai_response"`
	IsUpdate     bool   `json:"is_update" yaml:"is_update"`
	CreatedAt    string `json:"created_at" yaml:"created_at"`
}

// TokenPair is the access/refresh pair issued at sign-in
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
