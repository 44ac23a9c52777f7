package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go/twiml"

	"civic-backend/internal/ivr"
	"civic-backend/internal/recordings"
)

// IVRHTTP serves the voice provider's webhooks. Every response is a 200 with
// TwiML; failures are spoken to the caller instead.
type IVRHTTP struct {
	ctl     *ivr.Controller
	tracker recordings.Tracker
	log     zerolog.Logger
}

func NewIVRHTTP(ctl *ivr.Controller, tracker recordings.Tracker, log zerolog.Logger) *IVRHTTP {
	return &IVRHTTP{ctl: ctl, tracker: tracker, log: log}
}

func (h *IVRHTTP) respond(w http.ResponseWriter, elems []twiml.Element) {
	doc, err := ivr.Render(elems)
	if err != nil {
		h.log.Error().Err(err).Msg("render twiml")
		doc = ivr.FallbackDocument
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Fallback answers with the static goodbye document. It is the recovery reply
// for the IVR routes.
func (h *IVRHTTP) Fallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(ivr.FallbackDocument))
	}
}

// POST /voice
func (h *IVRHTTP) Voice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, h.ctl.EnterMenu())
	}
}

// POST /menu (Digits)
func (h *IVRHTTP) Menu() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, h.ctl.ResolveMenu(r.FormValue("Digits")))
	}
}

// POST /process-recording (RecordingUrl, From)
func (h *IVRHTTP) ProcessRecording() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		elems, _ := h.ctl.HandleRecordingComplete(r.Context(), r.FormValue("RecordingUrl"), r.FormValue("From"))
		h.respond(w, elems)
	}
}

// POST /status (Digits)
func (h *IVRHTTP) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, h.ctl.HandleStatusQuery(r.Context(), r.FormValue("Digits")))
	}
}

// POST /recording-status (RecordingSid, RecordingStatus)
func (h *IVRHTTP) RecordingStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := r.FormValue("RecordingSid")
		status := r.FormValue("RecordingStatus")
		h.log.Info().Str("recording_sid", sid).Str("recording_status", status).Msg("recording status")

		if sid != "" {
			if err := h.tracker.Record(r.Context(), sid, status); err != nil {
				h.log.Warn().Err(err).Str("recording_sid", sid).Msg("recording status not tracked")
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
