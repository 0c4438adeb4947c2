package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"worktimer/internal/api"
	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/validation"
)

// parseForm reads a form body, answering 400 itself when it cannot.
// net/http only decodes bodies of POST, PUT and PATCH, so DELETE bodies are
// decoded here.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseForm()
	if err == nil && r.Method == http.MethodDelete {
		var body []byte
		if body, err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes)); err == nil {
			r.PostForm, err = url.ParseQuery(string(body))
		}
	}
	if err != nil {
		s.writeError(w, r, errors.NewInvalidInputError("form", "", err.Error()))
		return false
	}
	return true
}

// pathID reads the {id} segment, answering 400 itself when it is malformed.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := api.ParseID("id", r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return 0, false
	}
	return id, true
}

func timeEntryForm(r *http.Request) validation.TimeEntryForm {
	return validation.TimeEntryForm{
		Description: r.PostFormValue("description"),
		ProjectID:   r.PostFormValue("projectId"),
		StartTime:   r.PostFormValue("startTime"),
		EndTime:     r.PostFormValue("endTime"),
	}
}

func projectForm(r *http.Request) api.ProjectForm {
	return api.ProjectForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Color:       r.PostFormValue("color"),
	}
}

func reportForm(r *http.Request) api.ReportForm {
	q := r.URL.Query()
	return api.ReportForm{
		DateFrom:   q.Get("dateFrom"),
		DateTo:     q.Get("dateTo"),
		HourlyRate: q.Get("hourlyRate"),
	}
}

// ========== Sessions ==========

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	user, session, err := s.business.Signup(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	user, session, err := s.business.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cookie.SessionCookie); err == nil && cookie.Value != "" {
		if err := s.business.Logout(r.Context(), cookie.Value); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// ========== Time entries ==========

func (s *Server) handleListTimeEntries(w http.ResponseWriter, r *http.Request, user domain.User) {
	q := r.URL.Query()
	listing, err := s.business.ListTimeEntries(r.Context(), user.ID, api.ListForm{
		Page:    q.Get("page"),
		Size:    q.Get("size"),
		OrderBy: q.Get("orderBy"),
		Order:   q.Get("order"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleStartTimeEntry(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.parseForm(w, r) {
		return
	}
	session, err := s.business.StartEntry(r.Context(), user.ID, timeEntryForm(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetTimeEntry(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	entry, err := s.api.GetTimeEntry(r.Context(), user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleStopTimeEntry(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	session, err := s.business.StopEntry(r.Context(), user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUpdateTimeEntry(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := s.pathID(w, r)
	if !ok || !s.parseForm(w, r) {
		return
	}
	entry, err := s.api.UpdateTimeEntry(r.Context(), user.ID, id, timeEntryForm(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteTimeEntry(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.api.DeleteTimeEntry(r.Context(), user.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ========== Projects ==========

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, user domain.User) {
	projects, err := s.api.ListProjects(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.parseForm(w, r) {
		return
	}
	project, err := s.api.CreateProject(r.Context(), user.ID, projectForm(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	project, err := s.api.GetProject(r.Context(), user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := s.pathID(w, r)
	if !ok || !s.parseForm(w, r) {
		return
	}
	project, err := s.api.UpdateProject(r.Context(), user.ID, id, projectForm(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.api.DeleteProject(r.Context(), user.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ========== Reports and transfer ==========

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, user domain.User) {
	report, err := s.business.BuildReport(r.Context(), user.ID, reportForm(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request, user domain.User) {
	// Render fully before writing so a failure can still answer with JSON.
	var buf bytes.Buffer
	if err := s.business.WriteReportPDF(r.Context(), user.ID, reportForm(r), &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="report.pdf"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request, user domain.User) {
	updated, err := s.business.BackfillDurations(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, user domain.User) {
	var buf bytes.Buffer
	if _, err := s.business.ExportCSV(r.Context(), user.ID, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.business.ExportFilename()))
	_, _ = buf.WriteTo(w)
}

// handleImport accepts a multipart upload in the "file" field or the raw CSV as body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, user domain.User) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, r, errors.NewInvalidInputError("file", "", "a CSV file is required"))
			return
		}
		defer file.Close()
		src = file
	}

	result, err := s.business.ImportCSV(r.Context(), user.ID, src)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ========== Own account ==========

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request, user domain.User) {
	account, err := s.api.GetAccount(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.parseForm(w, r) {
		return
	}
	account, err := s.api.UpdateAccount(r.Context(), user.ID, api.AccountForm{
		Email:      r.PostFormValue("email"),
		HourlyRate: r.PostFormValue("hourlyRate"),
		Currency:   r.PostFormValue("currency"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.parseForm(w, r) {
		return
	}
	if err := s.api.DeleteAccount(r.Context(), user.ID, r.PostFormValue("password")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.parseForm(w, r) {
		return
	}
	err := s.api.ChangePassword(r.Context(), user.ID, r.PostFormValue("currentPassword"), r.PostFormValue("newPassword"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ========== Administration ==========

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, user domain.User) {
	users, err := s.api.ListUsers(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.parseForm(w, r) {
		return
	}
	admin, _ := domain.ParseSettingValue(r.PostFormValue("admin")).Bool()
	created, err := s.api.CreateUser(r.Context(), user, api.UserForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Admin:    admin,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request, user domain.User) {
	settings, err := s.api.ListSettings(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.parseForm(w, r) {
		return
	}
	values := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		values[key] = r.PostForm.Get(key)
	}
	settings, err := s.api.UpdateSettings(r.Context(), user, values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
