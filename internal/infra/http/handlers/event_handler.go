package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wwwizards/leadflow/internal/entity"
	"github.com/wwwizards/leadflow/internal/usecase"
)

// EventHandler accepts normalized inbound events from the transport
// bridge and returns the outbound reply. It is the HTTP face of the
// intake dispatcher, nothing more.
type EventHandler struct {
	Intake *usecase.Intake
}

func NewEventHandler(intake *usecase.Intake) *EventHandler {
	return &EventHandler{Intake: intake}
}

func (h *EventHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var ev entity.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if ev.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	switch ev.Kind {
	case entity.EventCommand, entity.EventCallback, entity.EventText:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be command, callback or text"})
		return
	}

	reply := h.Intake.HandleEvent(r.Context(), ev)
	writeJSON(w, http.StatusOK, reply)
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
