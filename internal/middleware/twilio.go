package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go/client"
)

const twilioSignatureHeader = "X-Twilio-Signature"

// TwilioSignature rejects webhook calls whose X-Twilio-Signature does not match
// publicURL+path and the posted form. An empty authToken disables the check.
func TwilioSignature(l zerolog.Logger, authToken, publicURL string) func(http.Handler) http.Handler {
	if authToken == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	validator := client.NewRequestValidator(authToken)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			params := make(map[string]string, len(r.PostForm))
			for k, v := range r.PostForm {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}

			url := publicURL + r.URL.RequestURI()
			if !validator.Validate(url, params, r.Header.Get(twilioSignatureHeader)) {
				l.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("invalid twilio signature")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
