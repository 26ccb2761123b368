package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/enrollment"
	"github.com/s/eduportal/internal/handlers"
	"github.com/s/eduportal/internal/models"
)

type pendingJSON struct {
	ID        uint                 `json:"id"`
	UserID    uint                 `json:"user_id"`
	Username  string               `json:"username"`
	FullName  string               `json:"fullname"`
	CourseID  uint                 `json:"course_id"`
	Course    models.LocalizedText `json:"course_title"`
	CreatedAt time.Time            `json:"created_at"`
}

// GetEnrollRequestsAPI - GET /api/admin/enroll_requests
func (serv Service) GetEnrollRequestsAPI(w http.ResponseWriter, r *http.Request) {
	pending, err := serv.Enroll.Pending(r.Context())
	if err != nil {
		serv.Logger(r).Error("listing pending requests", zap.Error(err))
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	out := make([]pendingJSON, 0, len(pending))
	for _, p := range pending {
		out = append(out, pendingJSON{
			ID: p.ID, UserID: p.UserID, Username: p.Username, FullName: p.FullName,
			CourseID: p.CourseID, Course: p.CourseTitle, CreatedAt: p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateEnrollRequestAPI - PUT /api/admin/enroll_requests/{id}
// Тело: {"status": "accepted"} или {"status": "rejected"}.
func (serv Service) UpdateEnrollRequestAPI(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.VarID(r, "id")
	if !ok {
		jsonError(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var err error
	switch body.Status {
	case string(models.StatusAccepted):
		err = serv.Enroll.Accept(r.Context(), id)
	case "rejected":
		err = serv.Enroll.Reject(r.Context(), id)
	default:
		jsonError(w, "Unknown status", http.StatusBadRequest)
		return
	}
	if errors.Is(err, enrollment.ErrRequestNotFound) {
		jsonError(w, "Request not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": body.Status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}
