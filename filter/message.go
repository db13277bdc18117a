package filter

// SizeMsg tells the panel how much room it has.
type SizeMsg struct {
	Width  int
	Height int
}
