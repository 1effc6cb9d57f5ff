package api

import (
	"net/http"
	"strconv"

	service "github.com/achievehub/achievehub/internal/app"
)

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_activities"
	q := r.URL.Query()
	f := service.ActivityFilter{
		SkillType:     q.Get("skillType"),
		PLO:           q.Get("plo"),
		ActivityGroup: q.Get("activityGroup"),
	}
	if raw := q.Get("includePast"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, WrapKind(op, ErrBadRequest, err))
			return
		}
		f.IncludePast = v
	}
	list, err := s.deps.ListActivities(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_activity"
	var in service.ActivityInput
	if err := s.decode(r, op, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if claims, ok := ClaimsFrom(r.Context()); ok && in.CreatedBy == "" {
		in.CreatedBy = claims.Subject
	}
	a, err := s.deps.CreateActivity(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_activity"
	var patch service.ActivityPatch
	if err := s.decode(r, op, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.deps.UpdateActivity(r.Context(), r.PathValue("activityId"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) handleActivityDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.ActivityDetail(r.Context(), r.PathValue("activityId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, d)
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.ActivityParticipants(r.Context(), r.PathValue("activityId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}
