package validation

import "strings"

// Errors is a list of human readable field validation messages. It satisfies
// error so repositories and handlers can pass it around like any other
// failure, and the HTTP layer unwraps it into the 422 payload.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

func (e Errors) Messages() []string {
	return []string(e)
}
