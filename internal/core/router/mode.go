package router

// InputKind says whether a run operates on a piped byte stream or on
// filesystem paths. A run never mixes the two.
type InputKind int

const (
	InputStream InputKind = iota
	InputFiles
)

// String implements the Stringer interface.
func (k InputKind) String() string {
	if k == InputStream {
		return "stream"
	}
	return "files"
}

// Mode is the execution mode derived from input kind and flags. Exactly one
// mode is active per invocation.
type Mode int

const (
	// ModeBuffer runs the chain once over the piped stream and writes the
	// single result to stdout. Never touches disk.
	ModeBuffer Mode = iota
	// ModeDestination runs the chain over resolved files and writes results
	// beneath the destination directory, or to stdout when none was given
	// and exactly one result exists.
	ModeDestination
	// ModeOverwrite rewrites each input file in place with its minified form.
	ModeOverwrite
)

// String implements the Stringer interface.
func (m Mode) String() string {
	switch m {
	case ModeBuffer:
		return "buffer"
	case ModeDestination:
		return "destination"
	default:
		return "overwrite"
	}
}

// SelectMode is the single mode-selection function. Stream input always wins
// (destination and overwrite flags are ignored for piped bytes); a
// destination directory beats the overwrite flag; file input with neither
// flag still routes through destination mode, whose stdout sink rules apply.
func SelectMode(kind InputKind, hasOutDir, overwrite bool) Mode {
	switch {
	case kind == InputStream:
		return ModeBuffer
	case hasOutDir:
		return ModeDestination
	case overwrite:
		return ModeOverwrite
	default:
		return ModeDestination
	}
}
