package form

import (
	"errors"

	"github.com/smileynet/campusconnect/internal/record"
	"github.com/smileynet/campusconnect/internal/rules"
	"github.com/smileynet/campusconnect/internal/submit"
)

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeRejected     NoticeKind = "rejected"
	NoticeSubmitted    NoticeKind = "submitted"
	NoticeSubmitFailed NoticeKind = "submit_failed"
)

// Notice is a message for the presentation layer to show the user.
type Notice struct {
	Kind    NoticeKind
	Field   record.Field // Set for NoticeRejected.
	Message string
}

// NotifyFunc receives notices as the controller emits them.
type NotifyFunc func(Notice)

// NoticeFor renders the notice for an outcome: nil is a successful
// submission, a validation error is a rejected edit, anything else is a
// failed submission.
func NoticeFor(err error) Notice {
	if err == nil {
		return Notice{Kind: NoticeSubmitted, Message: "Form submitted successfully!"}
	}

	var ve *rules.ValidationError
	if errors.As(err, &ve) {
		return Notice{Kind: NoticeRejected, Field: ve.Field, Message: ve.Reason}
	}

	var se *submit.Error
	if errors.As(err, &se) && se.Kind == submit.ServerRejected {
		return Notice{Kind: NoticeSubmitFailed, Message: "Failed to submit form: " + se.Message}
	}
	return Notice{Kind: NoticeSubmitFailed, Message: "Failed to submit form."}
}
