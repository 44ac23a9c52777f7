package ivr

const (
	promptWelcome = "Welcome to the Civic Issue Reporting System. " +
		"Press 1 to report an issue. " +
		"Press 2 to check the status of your issue."
	promptNoInput      = "We did not receive any input. Goodbye!"
	promptRecord       = "Please describe your issue after the beep. Press the pound key when finished."
	promptEnterID      = "Please enter your complaint ID followed by the pound key."
	promptInvalid      = "Invalid choice. Returning to main menu."
	promptRecordedFmt  = "Thank you. Your complaint has been recorded with ID %s. Please save this ID for future reference. Goodbye!"
	promptStatusFmt    = "Complaint ID %s is currently %s. It was submitted on %s. Thank you for using our service."
	promptNotFoundFmt  = "Sorry, we could not find a complaint with ID %s. Please check your complaint ID and try again."
	promptLookupFailed = "Sorry, there was an error checking your complaint status. Please try again later."

	// PromptProcessingFailed is spoken when a response cannot be rendered.
	PromptProcessingFailed = "Sorry, there was an error processing your complaint. Please try again later."
)

// submittedLayout reads a date the way "Tue Mar 05 2024" is spoken.
const submittedLayout = "Mon Jan 02 2006"

const (
	maxRecordSeconds = "30"
	finishKey        = "#"
)

// FallbackDocument is served when a step cannot be rendered, so the caller
// hears an apology instead of provider silence.
const FallbackDocument = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<Response><Say>` + PromptProcessingFailed + `</Say><Hangup/></Response>`
