package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/gorilla/mux"
)

func mentorIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid mentor ID")
	}
	return id, nil
}

// ownMentorID ID ментора из пути, править может только он сам
func (a *API) ownMentorID(w http.ResponseWriter, r *http.Request, userID int64) (int64, bool) {
	mentorID, err := mentorIDFromPath(r)
	if err != nil {
		a.badRequest(w, err.Error())
		return 0, false
	}
	if mentorID != userID {
		a.writeError(w, r, scheduling.ErrForbidden)
		return 0, false
	}
	return mentorID, true
}

type registerMentorRequest struct {
	DisplayName    string `json:"display_name"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

func (a *API) registerMentor(w http.ResponseWriter, r *http.Request, userID int64) {
	var req registerMentorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "invalid request body")
		return
	}

	mentor, err := a.services.Mentors.Register(r.Context(), &model.Mentor{
		ID:             userID,
		DisplayName:    req.DisplayName,
		TelegramChatID: req.TelegramChatID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, mentor)
}

func (a *API) mentorOverview(w http.ResponseWriter, r *http.Request) {
	mentorID, err := mentorIDFromPath(r)
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}

	overview, err := a.services.Slots.MentorOverview(r.Context(), mentorID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, overview)
}

func (a *API) getAvailability(w http.ResponseWriter, r *http.Request) {
	mentorID, err := mentorIDFromPath(r)
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}

	tpl, err := a.services.Availability.GetTemplate(r.Context(), mentorID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, tpl)
}

type replaceDayRequest struct {
	Ranges []model.TimeRange `json:"ranges"`
}

func (a *API) replaceDay(w http.ResponseWriter, r *http.Request, userID int64) {
	mentorID, ok := a.ownMentorID(w, r, userID)
	if !ok {
		return
	}

	day, err := model.ParseWeekday(mux.Vars(r)["day"])
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}

	var req replaceDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	tpl, err := a.services.Availability.ReplaceDay(r.Context(), mentorID, day, req.Ranges)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, tpl)
}

type replaceWeekRequest struct {
	Days map[model.Weekday][]model.TimeRange `json:"days"`
}

func (a *API) replaceWeek(w http.ResponseWriter, r *http.Request, userID int64) {
	mentorID, ok := a.ownMentorID(w, r, userID)
	if !ok {
		return
	}

	var req replaceWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Days) == 0 {
		a.badRequest(w, "no days given")
		return
	}

	tpl, err := a.services.Availability.ReplaceWeek(r.Context(), mentorID, req.Days)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, tpl)
}

type setPricingRequest struct {
	Currency          string                      `json:"currency"`
	MinSessionMinutes int                         `json:"min_session_minutes"`
	Rates             map[model.SessionMode]int64 `json:"rates"`
}

func (a *API) setPricing(w http.ResponseWriter, r *http.Request, userID int64) {
	mentorID, ok := a.ownMentorID(w, r, userID)
	if !ok {
		return
	}

	var req setPricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	rule, err := a.services.Mentors.SetPricing(r.Context(), &model.PricingRule{
		MentorID:          mentorID,
		Currency:          req.Currency,
		MinSessionMinutes: req.MinSessionMinutes,
		Rates:             req.Rates,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, rule)
}

type listSlotsResponse struct {
	MentorID int64      `json:"mentor_id"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	Slots    []slotView `json:"slots"`
}

func (a *API) listSlots(w http.ResponseWriter, r *http.Request) {
	mentorID, err := mentorIDFromPath(r)
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}

	loc := a.services.Slots.Location()
	from, to := a.services.Slots.DefaultRange()
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = model.ParseDate(v, loc); err != nil {
			a.badRequest(w, err.Error())
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = model.ParseDate(v, loc); err != nil {
			a.badRequest(w, err.Error())
			return
		}
	}

	slots, err := a.services.Slots.ListSlots(r.Context(), mentorID, from, to)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	onlyAvailable := r.URL.Query().Get("available") == "true"
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		if onlyAvailable && !s.IsAvailable() {
			continue
		}
		views = append(views, newSlotView(s))
	}

	a.Response(w, http.StatusOK, listSlotsResponse{
		MentorID: mentorID,
		From:     model.FormatDate(from),
		To:       model.FormatDate(to),
		Slots:    views,
	})
}

func (a *API) mentorBookings(w http.ResponseWriter, r *http.Request, userID int64) {
	mentorID, ok := a.ownMentorID(w, r, userID)
	if !ok {
		return
	}

	bookings, err := a.services.Bookings.ListForMentor(r.Context(), mentorID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, newBookingViews(bookings))
}
