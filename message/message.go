package message

import (
	nt "sift/entity"
)

// ApplyMsg carries a filter snapshot to apply to the record store.
type ApplyMsg struct {
	Root *nt.Group
}

// GetPageMsg asks the host for a page of filtered records.
type GetPageMsg struct {
	Offset int
	Size   int
}

// PageMsg carries a page of filtered records and the filtered count.
type PageMsg struct {
	Lines []nt.Line
	Count int
}

// ErrorMsg contains an error
type ErrorMsg struct {
	Err error
}
