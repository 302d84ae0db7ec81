// Package artifact finds the approved code block in a transcript and writes it out.
package artifact

import (
	"strings"

	"triad/pkg/transcript"
)

const (
	// ApprovalToken signals that a participant accepted the work. Matched case-insensitively.
	ApprovalToken = "APPROVED"
	// OpenFence starts the block that carries the artifact.
	OpenFence = "```html"
	// CloseFence ends it.
	CloseFence = "```"
)

// Artifact is the payload extracted from an approved transcript.
type Artifact struct {
	Content string
}

// Approved reports whether any participant message contains the approval token.
// The match is a substring match anywhere in the message, so an unrelated
// mention of the word also counts.
func Approved(msgs []transcript.Message) bool {
	for i := range msgs {
		if !msgs[i].Role.IsParticipant() {
			continue
		}
		if strings.Contains(strings.ToUpper(msgs[i].Content), ApprovalToken) {
			return true
		}
	}
	return false
}

// FirstFencedBlock returns the body of the earliest ```html block authored by a
// participant. A message whose opening fence is never closed is skipped.
func FirstFencedBlock(msgs []transcript.Message) (string, bool) {
	for i := range msgs {
		if !msgs[i].Role.IsParticipant() {
			continue
		}
		if body, ok := fencedBody(msgs[i].Content); ok {
			return body, true
		}
	}
	return "", false
}

func fencedBody(content string) (string, bool) {
	open := strings.Index(content, OpenFence)
	if open < 0 {
		return "", false
	}
	start := open + len(OpenFence)
	end := strings.Index(content[start:], CloseFence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(content[start : start+end]), true
}

// CheckAndExtract returns the artifact once approval has been signaled and a
// fenced block exists somewhere in the transcript. Approval without a block
// yields (nil, false) and the caller keeps going.
func CheckAndExtract(t *transcript.Transcript) (*Artifact, bool) {
	msgs := t.All()
	if !Approved(msgs) {
		return nil, false
	}
	body, ok := FirstFencedBlock(msgs)
	if !ok {
		return nil, false
	}
	return &Artifact{Content: body}, true
}
