package logging

import "regexp"

var (
	// Anthropic keys must be masked before the generic OpenAI pattern, which
	// would otherwise match their prefix.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// Avoid re-matching already masked strings (they contain *)
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)

	// Database password inside a DSN
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)

	// Geocoder-style API key query parameters
	queryKeyPattern = regexp.MustCompile(`([?&](?:key|apikey|api_key)=)[^&\s]+`)
)

// SanitizeError returns the error message with credentials masked so it is
// safe to log or return from the trigger endpoint.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = queryKeyPattern.ReplaceAllString(msg, "${1}****")

	return msg
}
