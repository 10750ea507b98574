// Package confirm abstracts the yes/no prompt shown before destructive
// actions. The core only depends on the capability; presentation lives in
// whatever hosts the tool.
package confirm

// Confirmer answers a yes/no prompt. Destructive operations proceed only
// on an affirmative answer; a negative or dismissed prompt changes nothing.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Func adapts a function to the Confirmer interface.
type Func func(title, message string) bool

func (f Func) Confirm(title, message string) bool { return f(title, message) }

// Always affirms every prompt. The HTTP layer uses it once the client has
// already shown its own dialog and sent confirmed=true.
var Always Confirmer = Func(func(string, string) bool { return true })

// Never declines every prompt.
var Never Confirmer = Func(func(string, string) bool { return false })
