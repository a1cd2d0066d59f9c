package demoapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

const dateLayout = "2006-01-02"

var projectFields = []string{
	"title", "description", "detailed_description", "location", "latitude", "longitude",
	"risk_assessment", "mitigation_strategies", "supply_chain_requirements",
	"resource_allocation", "equipment_requirements", "start_date", "end_date",
	"status", "estimated_workers", "budget", "current_spending",
}

// applyFields decodes each allowed key of body into dst on its own, so one
// bad value is reported against its field and leaves the others applied.
func applyFields(dst any, body map[string]json.RawMessage, allowed []string) fieldErrors {
	errs := fieldErrors{}
	for _, key := range allowed {
		raw, ok := body[key]
		if !ok {
			continue
		}
		one, err := json.Marshal(map[string]json.RawMessage{key: raw})
		if err == nil {
			err = json.Unmarshal(one, dst)
		}
		if err != nil {
			errs.add(key, "Invalid value.")
		}
	}
	return errs
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func checkDates(errs fieldErrors, start, end string) {
	switch {
	case start == "":
		errs.add("start_date", msgRequired)
	case !validDate(start):
		errs.add("start_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	switch {
	case end == "":
		errs.add("end_date", msgRequired)
	case !validDate(end):
		errs.add("end_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	if validDate(start) && validDate(end) && end < start {
		errs.add("end_date", "End date must be after start date.")
	}
}

func validateProject(p *models.Project, errs fieldErrors) {
	if strings.TrimSpace(p.Title) == "" {
		errs.add("title", "This field may not be blank.")
	}
	checkDates(errs, p.StartDate, p.EndDate)
	valid := false
	for _, st := range models.ProjectStatuses() {
		if p.Status == st {
			valid = true
		}
	}
	if !valid {
		errs.add("status", `"`+p.Status+`" is not a valid choice.`)
	}
	if p.Budget < 0 {
		errs.add("budget", "Ensure this value is greater than or equal to 0.")
	}
	if p.CurrentSpending < 0 {
		errs.add("current_spending", "Ensure this value is greater than or equal to 0.")
	}
	if p.EstimatedWorkers < 0 {
		errs.add("estimated_workers", "Ensure this value is greater than or equal to 0.")
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		errs.add("latitude", "Ensure this value is between -90 and 90.")
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		errs.add("longitude", "Ensure this value is between -180 and 180.")
	}
}

func urlID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func queryID(r *http.Request, key string) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	return id, err == nil
}

// canView reports whether u may read project p. Callers hold the lock.
func (s *Server) canView(u *account, p *models.Project) bool {
	if u.Role == models.RoleAdmin || isSupervisorOf(u, p) {
		return true
	}
	for _, w := range s.workers {
		if w.Project == p.ID && w.Worker != nil && w.Worker.ID == u.ID {
			return true
		}
	}
	return false
}

func isSupervisorOf(u *account, p *models.Project) bool {
	return p.Supervisor != nil && p.Supervisor.ID == u.ID
}

// visibleProject looks up a project the user may read. Missing and hidden
// projects both answer 404.
func (s *Server) visibleProject(w http.ResponseWriter, u *account, id int) *models.Project {
	p := s.projects[id]
	if p == nil || !s.canView(u, p) {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return nil
	}
	return p
}

// ownedProject looks up a project the user supervises
func (s *Server) ownedProject(w http.ResponseWriter, u *account, id int) *models.Project {
	p := s.visibleProject(w, u, id)
	if p == nil {
		return nil
	}
	if !isSupervisorOf(u, p) {
		writeDetail(w, http.StatusForbidden, msgForbidden)
		return nil
	}
	return p
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.RLock()
	out := []models.Project{}
	for _, p := range s.projects {
		if s.canView(u, p) {
			out = append(out, *p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	if u.Role != models.RoleSupervisor {
		writeDetail(w, http.StatusForbidden, "Only supervisors can create projects.")
		return
	}
	var body map[string]json.RawMessage
	if err := readJSON(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	p := &models.Project{Status: models.StatusPlanning}
	errs := applyFields(p, body, projectFields)
	validateProject(p, errs)
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	s.mu.Lock()
	p.ID = s.nextID()
	p.Supervisor = publicUser(u)
	p.CreatedAt = s.timestamp()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = p
	room := &models.ChatRoom{ID: s.nextID(), Project: p.ID, CreatedAt: p.CreatedAt}
	s.rooms[room.ID] = room
	out := *p
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}
	u := currentUser(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.visibleProject(w, u, id)
	if p == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.detail(p))
}

// detail copies a project with its nested resources. Callers hold the lock.
func (s *Server) detail(p *models.Project) models.Project {
	out := *p
	out.Workers = s.workersOf(p.ID)
	out.Suppliers = []models.Supplier{}
	for _, sup := range s.suppliers {
		if sup.Project == p.ID {
			out.Suppliers = append(out.Suppliers, *sup)
		}
	}
	sort.Slice(out.Suppliers, func(i, j int) bool { return out.Suppliers[i].ID < out.Suppliers[j].ID })
	out.Risks = []models.Risk{}
	for _, risk := range s.risks {
		if risk.Project == p.ID {
			out.Risks = append(out.Risks, *risk)
		}
	}
	sort.Slice(out.Risks, func(i, j int) bool { return out.Risks[i].ID < out.Risks[j].ID })
	out.TimelineEvents = s.timelineOf(p.ID)
	return out
}

func (s *Server) handlePatchProject(w http.ResponseWriter, r *http.Request) {
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
	p := s.ownedProject(w, u, id)
	if p == nil {
		return
	}

	next := *p
	errs := applyFields(&next, body, projectFields)
	validateProject(&next, errs)
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	next.UpdatedAt = s.timestamp()
	*p = next
	writeJSON(w, http.StatusOK, s.detail(p))
}

func (s *Server) handleAddWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}
	var req struct {
		Email           string `json:"email"`
		RoleDescription string `json:"role_description"`
	}
	if err := readJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ownedProject(w, u, id)
	if p == nil {
		return
	}
	if req.Email == "" {
		writeDetail(w, http.StatusBadRequest, "Worker email is required")
		return
	}
	worker := s.findUser(func(a *account) bool {
		return strings.EqualFold(a.Email, req.Email) && a.Role == models.RoleWorker
	})
	if worker == nil {
		writeDetail(w, http.StatusNotFound, "No worker found with this email")
		return
	}
	for _, pw := range s.workers {
		if pw.Project == p.ID && pw.Worker.ID == worker.ID {
			writeDetail(w, http.StatusBadRequest, "Worker is already assigned to this project")
			return
		}
	}

	pw := &models.ProjectWorker{
		ID:              s.nextID(),
		Project:         p.ID,
		Worker:          publicUser(worker),
		RoleDescription: req.RoleDescription,
		AssignedAt:      s.timestamp(),
	}
	s.workers[pw.ID] = pw
	p.CurrentWorkerCount = len(s.workersOf(p.ID))
	writeJSON(w, http.StatusCreated, pw)
}
