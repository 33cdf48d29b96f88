// Package options implements the option universe of spec.md §4.2: every
// recognized ABP option token maps to a single bit in a wide bitset.
// Only a handful of bits change matcher behavior (§4.7); the rest are
// parsed and preserved on the filter object for round-tripping but have
// no effect in the core, as spec.md is explicit about.
package options

// Set is a bitset over the option universe. uint64 is wide enough for
// every token below with room to grow.
type Set uint64

const (
	Script Set = 1 << iota
	NotScript
	Image
	NotImage
	Stylesheet
	NotStylesheet
	Object
	NotObject
	Subdocument
	NotSubdocument
	XMLHTTPRequest
	NotXMLHTTPRequest
	WebSocket
	NotWebSocket
	ObjectSubrequest
	NotObjectSubrequest
	Document
	NotDocument
	ElemHide
	NotElemHide
	Other
	NotOther
	Media
	NotMedia
	Font
	NotFont
	Ping
	NotPing

	Popup
	NotPopup
	ThirdParty
	NotThirdParty
	DoNotTrack
	GenericHide
	GenericBlock
	NotGenericBlock
	Collapse
	NotCollapse

	MatchCase
)

// token maps a bare option name (without leading `~`) to its positive
// and negative bits. A zero bit means the token has no negated form.
var token = map[string][2]Set{
	"script":            {Script, NotScript},
	"image":             {Image, NotImage},
	"stylesheet":        {Stylesheet, NotStylesheet},
	"object":            {Object, NotObject},
	"subdocument":       {Subdocument, NotSubdocument},
	"xmlhttprequest":    {XMLHTTPRequest, NotXMLHTTPRequest},
	"websocket":         {WebSocket, NotWebSocket},
	"object-subrequest": {ObjectSubrequest, NotObjectSubrequest},
	"document":          {Document, NotDocument},
	"elemhide":          {ElemHide, NotElemHide},
	"other":             {Other, NotOther},
	"media":             {Media, NotMedia},
	"font":              {Font, NotFont},
	"ping":              {Ping, NotPing},

	"popup":         {Popup, NotPopup},
	"third-party":   {ThirdParty, NotThirdParty},
	"donottrack":    {DoNotTrack, 0},
	"generichide":   {GenericHide, 0},
	"genericblock":  {GenericBlock, NotGenericBlock},
	"collapse":      {Collapse, NotCollapse},
	"matchcase":     {MatchCase, 0},
}

// Parse resolves a single option token (as split on "," from the
// options segment, already trimmed) to the bit it sets. Unrecognised
// tokens return ok=false and must be ignored by the caller, per
// spec.md §4.1 ("Unrecognised tokens are ignored").
func Parse(tok string) (bit Set, ok bool) {
	negated := false
	name := tok
	if len(tok) > 0 && tok[0] == '~' {
		negated = true
		name = tok[1:]
	}

	pair, found := token[name]
	if !found {
		return 0, false
	}
	if negated {
		if pair[1] == 0 {
			return 0, false
		}
		return pair[1], true
	}
	return pair[0], true
}

// Has reports whether bit is set in s.
func (s Set) Has(bit Set) bool {
	return s&bit != 0
}

// Set returns s with bit set.
func (s Set) Set(bit Set) Set {
	return s | bit
}
