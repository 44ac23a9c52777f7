// Package ivr drives the phone menu: a caller either records a complaint or
// reads back the status of an earlier one. Every step is a pure function of
// the webhook parameters; nothing is kept between calls.
package ivr

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go/twiml"

	"civic-backend/internal/models"
)

// ComplaintStore is the part of the complaint repository the call flow uses.
type ComplaintStore interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByComplaintID(ctx context.Context, complaintID string) (*models.Complaint, error)
}

// IDSource hands out temporary IDs for complaints that could not be stored.
type IDSource interface {
	Temporary() string
}

// Routes are the absolute webhook paths the markup points the provider at.
type Routes struct {
	Voice            string
	Menu             string
	ProcessRecording string
	Status           string
	RecordingStatus  string
}

// NewRoutes derives the routes from the mount point, e.g. "/api/ivr".
func NewRoutes(base string) Routes {
	base = "/" + strings.Trim(base, "/")
	if base == "/" {
		base = ""
	}
	return Routes{
		Voice:            base + "/voice",
		Menu:             base + "/menu",
		ProcessRecording: base + "/process-recording",
		Status:           base + "/status",
		RecordingStatus:  base + "/recording-status",
	}
}

type Controller struct {
	store  ComplaintStore
	ids    IDSource
	routes Routes
	log    zerolog.Logger
}

func NewController(store ComplaintStore, ids IDSource, routes Routes, log zerolog.Logger) *Controller {
	return &Controller{store: store, ids: ids, routes: routes, log: log.With().Str("component", "ivr").Logger()}
}

func (c *Controller) Routes() Routes { return c.routes }

// EnterMenu greets the caller and waits for a single key press or word.
// The trailing say and hangup only run when the gather times out.
func (c *Controller) EnterMenu() []twiml.Element {
	return []twiml.Element{
		&twiml.VoiceGather{
			Input:     "dtmf speech",
			NumDigits: "1",
			Action:    c.routes.Menu,
			Method:    "POST",
			InnerElements: []twiml.Element{
				&twiml.VoiceSay{Message: promptWelcome},
			},
		},
		&twiml.VoiceSay{Message: promptNoInput},
		&twiml.VoiceHangup{},
	}
}

// ResolveMenu branches on the menu choice. Anything but 1 or 2 loops back to
// the menu, without a retry limit.
func (c *Controller) ResolveMenu(digit string) []twiml.Element {
	switch digit {
	case "1":
		return []twiml.Element{
			&twiml.VoiceSay{Message: promptRecord},
			&twiml.VoiceRecord{
				Action:                        c.routes.ProcessRecording,
				Method:                        "POST",
				MaxLength:                     maxRecordSeconds,
				FinishOnKey:                   finishKey,
				RecordingStatusCallback:       c.routes.RecordingStatus,
				RecordingStatusCallbackMethod: "POST",
			},
		}
	case "2":
		return []twiml.Element{
			&twiml.VoiceSay{Message: promptEnterID},
			&twiml.VoiceGather{
				Input:       "dtmf",
				FinishOnKey: finishKey,
				Action:      c.routes.Status,
				Method:      "POST",
			},
		}
	default:
		c.log.Debug().Str("digits", digit).Msg("invalid menu choice")
		return []twiml.Element{
			&twiml.VoiceSay{Message: promptInvalid},
			&twiml.VoiceRedirect{Url: c.routes.Voice, Method: "POST"},
		}
	}
}

// HandleRecordingComplete stores the complaint and reads its ID back. When
// the store fails the caller still gets a TMP- ID; that ID is never saved.
func (c *Controller) HandleRecordingComplete(ctx context.Context, recordingURL, from string) ([]twiml.Element, string) {
	c.log.Info().Str("from", from).Str("recording_url", recordingURL).Msg("recording received")

	complaint := &models.Complaint{
		PhoneNumber:  from,
		RecordingURL: recordingURL,
		Description:  models.VoiceComplaintDescription,
	}
	id := ""
	if err := c.store.Create(ctx, complaint); err != nil {
		id = c.ids.Temporary()
		c.log.Error().Err(err).Str("from", from).Str("temp_id", id).Msg("complaint not stored, using temporary id")
	} else {
		id = complaint.ComplaintID
		c.log.Info().Str("complaint_id", id).Msg("complaint stored")
	}

	return []twiml.Element{
		&twiml.VoiceSay{Message: fmt.Sprintf(promptRecordedFmt, id)},
		&twiml.VoiceHangup{},
	}, id
}

// HandleStatusQuery reads back the status of the complaint with exactly the
// entered ID.
func (c *Controller) HandleStatusQuery(ctx context.Context, enteredID string) []twiml.Element {
	c.log.Info().Str("complaint_id", enteredID).Msg("status check")

	msg := ""
	complaint, err := c.Lookup(ctx, enteredID)
	switch {
	case err != nil:
		c.log.Error().Err(err).Str("complaint_id", enteredID).Msg("status lookup failed")
		msg = promptLookupFailed
	case complaint == nil:
		msg = fmt.Sprintf(promptNotFoundFmt, enteredID)
	default:
		msg = fmt.Sprintf(promptStatusFmt, enteredID, complaint.Status, complaint.CreatedAt.Format(submittedLayout))
	}
	return []twiml.Element{
		&twiml.VoiceSay{Message: msg},
		&twiml.VoiceHangup{},
	}
}

// Lookup returns the complaint with exactly id, or nil when there is none.
// There is no partial matching.
func (c *Controller) Lookup(ctx context.Context, id string) (*models.Complaint, error) {
	if id == "" {
		return nil, nil
	}
	return c.store.FindByComplaintID(ctx, id)
}

// Render turns a step into the voice response document.
func Render(elems []twiml.Element) (string, error) {
	return twiml.Voice(elems)
}
