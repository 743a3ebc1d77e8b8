package conflict

// Marker tokens git and structural merge tools leave on unresolved regions
const (
	TokenBegin     = "<<<<<<<"
	TokenSeparator = "======="
	TokenEnd       = ">>>>>>>"
)

// Marker is one conflict-marker line found in a file
type Marker struct {
	// Path is the file path relative to the scanned root
	Path string
	// Line is the 1-based line number
	Line int
	// Token is which marker token the line carries
	Token string
}
