package models

// Party identifies which side of the ticket conversation acted.
type Party string

const (
	PartyVendor   Party = "vendor"
	PartySecurity Party = "security"
)

// Other returns the opposite conversation side.
func (p Party) Other() Party {
	if p == PartyVendor {
		return PartySecurity
	}
	return PartyVendor
}

// System-generated messages are distinguished from user messages by these
// markers at the start of the text.
const (
	SLAAlertMarker     = "[SYSTEM ALERT]"
	RetestCommentTag   = "[SYSTEM RETEST]:"
	SLACommitmentIntro = "Hi Team,"
)

// ChatMessage is one entry in a ticket's discussion thread. Append-only.
type ChatMessage struct {
	ID        string `json:"id"`
	Sender    Party  `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
