package server

import (
	_ "embed"
	"html/template"
)

//go:embed templates/callback.html
var callbackPageTemplateHTML string

//go:embed templates/error.html
var errorPageTemplateHTML string

var callbackPageTemplate = template.Must(template.New("callback").Parse(callbackPageTemplateHTML))
var errorPageTemplate = template.Must(template.New("error").Parse(errorPageTemplateHTML))

// CallbackPageData drives the callback page script. MessageJSON is the
// serialized postMessage payload, nil when there is nothing to post.
type CallbackPageData struct {
	MessageJSON  template.JS
	TargetOrigin string
	FallbackURL  string
	ErrorMessage string
}

// ErrorPageData represents the data for the error display page
type ErrorPageData struct {
	Message string
}
