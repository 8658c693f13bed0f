package api

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"go.uber.org/zap"
)

type violationBody struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Range   string `json:"range,omitempty"`
}

type errorBody struct {
	Error      string          `json:"error"`
	Code       string          `json:"code,omitempty"`
	Violations []violationBody `json:"violations,omitempty"`
	Retryable  bool            `json:"retryable,omitempty"`
}

// writeError переводит ошибку сервиса в HTTP ответ.
// Валидация и конфликт возвращают конкретную причину, системные ошибки - общий текст.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *scheduling.ValidationError

	switch {
	case errors.As(err, &verr):
		body := errorBody{Error: "validation failed", Code: "validation_failed"}
		for _, v := range verr.Violations {
			vb := violationBody{Rule: scheduling.RuleCode(v.Rule), Message: v.Rule.Error()}
			if v.Range != nil {
				vb.Range = v.Range.String()
			}
			body.Violations = append(body.Violations, vb)
		}
		a.Response(w, http.StatusUnprocessableEntity, body)

	case errors.Is(err, scheduling.ErrValidation):
		a.Response(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Code: "validation_failed"})

	case errors.Is(err, scheduling.ErrSlotAlreadyBooked):
		a.Response(w, http.StatusConflict, errorBody{
			Error: "slot already booked, choose another slot",
			Code:  "slot_already_booked",
		})

	case errors.Is(err, scheduling.ErrConflict):
		a.Response(w, http.StatusConflict, errorBody{Error: err.Error(), Code: "conflict"})

	case errors.Is(err, scheduling.ErrNotFound):
		a.Response(w, http.StatusNotFound, errorBody{Error: err.Error(), Code: "not_found"})

	case errors.Is(err, scheduling.ErrForbidden):
		a.Response(w, http.StatusForbidden, errorBody{Error: "forbidden", Code: "forbidden"})

	default:
		a.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		a.Response(w, http.StatusInternalServerError, errorBody{
			Error:     "internal error, please retry",
			Code:      "internal",
			Retryable: true,
		})
	}
}

func (a *API) badRequest(w http.ResponseWriter, msg string) {
	a.Response(w, http.StatusBadRequest, errorBody{Error: msg, Code: "bad_request"})
}
