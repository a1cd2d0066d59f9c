package demoapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

var (
	supplierFields = []string{
		"name", "contact_person", "contact_email", "contact_phone",
		"materials_provided", "reliability_score", "lead_time_days",
	}
	riskFields = []string{
		"title", "description", "risk_level", "risk_category", "probability",
		"impact", "mitigation_plan", "contingency_plan", "is_resolved",
	}
	timelineFields = []string{
		"title", "description", "start_date", "end_date",
		"completion_percentage", "is_milestone",
	}
	riskLevels     = []string{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical}
	riskCategories = []string{"safety", "financial", "schedule", "technical", "environmental", "other"}
)

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func required(errs fieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, msgRequired)
	}
}

// workersOf lists a project's assignments. Callers hold the lock.
func (s *Server) workersOf(projectID int) []models.ProjectWorker {
	out := []models.ProjectWorker{}
	for _, pw := range s.workers {
		if pw.Project == projectID {
			out = append(out, *pw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// timelineOf lists a project's events by start date. Callers hold the lock.
func (s *Server) timelineOf(projectID int) []models.TimelineEvent {
	out := []models.TimelineEvent{}
	for _, ev := range s.timeline {
		if ev.Project == projectID {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate == out[j].StartDate {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate < out[j].StartDate
	})
	return out
}

// projectFilter resolves ?project_id against what the user may see
func (s *Server) projectFilter(w http.ResponseWriter, r *http.Request, u *account) (int, bool) {
	id, ok := queryID(r, "project_id")
	if !ok {
		writeFieldErrors(w, fieldErrors{"project_id": {msgRequired}})
		return 0, false
	}
	if s.visibleProject(w, u, id) == nil {
		return 0, false
	}
	return id, true
}

// decodeOwned reads a create body and resolves its project, which the user
// must supervise.
func (s *Server) decodeOwned(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, *models.Project, bool) {
	var body map[string]json.RawMessage
	if err := readJSON(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return nil, nil, false
	}
	var ref struct {
		Project int `json:"project"`
	}
	if raw, ok := body["project"]; ok {
		_ = json.Unmarshal(raw, &ref.Project)
	}
	if ref.Project == 0 {
		writeFieldErrors(w, fieldErrors{"project": {msgRequired}})
		return nil, nil, false
	}
	p := s.ownedProject(w, currentUser(r.Context()), ref.Project)
	if p == nil {
		return nil, nil, false
	}
	return body, p, true
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.projectFilter(w, r, u)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.workersOf(id))
}

func (s *Server) handleRemoveWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}
	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	pw := s.workers[id]
	if pw == nil {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}
	p := s.ownedProject(w, u, pw.Project)
	if p == nil {
		return
	}
	delete(s.workers, id)
	p.CurrentWorkerCount = len(s.workersOf(p.ID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.projectFilter(w, r, u)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.detail(s.projects[id]).Suppliers)
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, p, ok := s.decodeOwned(w, r)
	if !ok {
		return
	}
	sup := &models.Supplier{ReliabilityScore: 80, LeadTimeDays: 7}
	errs := applyFields(sup, body, supplierFields)
	required(errs, "name", sup.Name)
	required(errs, "materials_provided", sup.MaterialsProvided)
	if sup.ReliabilityScore < 0 || sup.ReliabilityScore > 100 {
		errs.add("reliability_score", "Ensure this value is between 0 and 100.")
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	sup.ID = s.nextID()
	sup.Project = p.ID
	sup.CreatedAt = s.timestamp()
	s.suppliers[sup.ID] = sup
	writeJSON(w, http.StatusCreated, sup)
}

func (s *Server) handleListRisks(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.projectFilter(w, r, u)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.detail(s.projects[id]).Risks)
}

func (s *Server) handleCreateRisk(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, p, ok := s.decodeOwned(w, r)
	if !ok {
		return
	}
	risk := &models.Risk{RiskLevel: models.RiskMedium, RiskCategory: "other", Probability: 0.5, Impact: 5}
	errs := applyFields(risk, body, riskFields)
	required(errs, "title", risk.Title)
	required(errs, "description", risk.Description)
	if !contains(riskLevels, risk.RiskLevel) {
		errs.add("risk_level", `"`+risk.RiskLevel+`" is not a valid choice.`)
	}
	if !contains(riskCategories, risk.RiskCategory) {
		errs.add("risk_category", `"`+risk.RiskCategory+`" is not a valid choice.`)
	}
	if risk.Probability < 0 || risk.Probability > 1 {
		errs.add("probability", "Ensure this value is between 0 and 1.")
	}
	if risk.Impact < 1 || risk.Impact > 10 {
		errs.add("impact", "Ensure this value is between 1 and 10.")
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	risk.ID = s.nextID()
	risk.Project = p.ID
	risk.CreatedAt = s.timestamp()
	s.risks[risk.ID] = risk
	writeJSON(w, http.StatusCreated, risk)
}

func (s *Server) handleListTimeline(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.projectFilter(w, r, u)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.timelineOf(id))
}

func validateEvent(ev *models.TimelineEvent, errs fieldErrors) {
	required(errs, "title", ev.Title)
	checkDates(errs, ev.StartDate, ev.EndDate)
	if ev.CompletionPercentage < 0 || ev.CompletionPercentage > 100 {
		errs.add("completion_percentage", "Ensure this value is between 0 and 100.")
	}
}

func (s *Server) handleCreateTimeline(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, p, ok := s.decodeOwned(w, r)
	if !ok {
		return
	}
	ev := &models.TimelineEvent{}
	errs := applyFields(ev, body, timelineFields)
	validateEvent(ev, errs)
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	ev.ID = s.nextID()
	ev.Project = p.ID
	ev.CreatedAt = s.timestamp()
	ev.UpdatedAt = ev.CreatedAt
	s.timeline[ev.ID] = ev
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handlePatchTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}
	var body map[string]json.RawMessage
	if err := readJSON(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return
	}
	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.timeline[id]
	if ev == nil {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}
	if s.ownedProject(w, u, ev.Project) == nil {
		return
	}
	next := *ev
	errs := applyFields(&next, body, timelineFields)
	validateEvent(&next, errs)
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	next.UpdatedAt = s.timestamp()
	*ev = next
	writeJSON(w, http.StatusOK, ev)
}
