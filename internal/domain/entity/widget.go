package entity

type WidgetKind string

const (
	WidgetNativeSelect WidgetKind = "native_select"
	WidgetPopupSelect  WidgetKind = "popup_select"
	WidgetUnknown      WidgetKind = "unknown"
)

type MatchKind string

const (
	MatchNone      MatchKind = ""
	MatchExact     MatchKind = "exact"
	MatchSubstring MatchKind = "substring"
	MatchToken     MatchKind = "token"
)

type SelectionStatus string

const (
	SelectionSelected    SelectionStatus = "selected"
	SelectionNotFound    SelectionStatus = "option_not_found"
	SelectionUnsupported SelectionStatus = "unsupported_control"
	SelectionUnresolved  SelectionStatus = "unresolved"
)

// SelectionOutcome always carries the candidates that were considered, even
// when nothing was selected.
type SelectionOutcome struct {
	Status     SelectionStatus
	Kind       WidgetKind
	Selected   string
	Match      MatchKind
	Candidates []string
}

func (o SelectionOutcome) OK() bool {
	return o.Status == SelectionSelected
}
