package clumper

import "errors"

var (
	ErrBadClumper  = errors.New("bad clumper")
	ErrEntryExists = errors.New("clumper exists")
	ErrNotChecked  = errors.New("CheckOptions must be called before AcceptRecord")
	ErrBadOptions  = errors.New("bad clumper options")
)

// HelpRequest is returned by Options.CheckOptions when listing or showing
// clumpers was asked for instead of grouping. Text is the requested help.
type HelpRequest struct {
	Text string
}

func (h *HelpRequest) Error() string {
	return h.Text
}
