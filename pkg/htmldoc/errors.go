package htmldoc

import (
	"errors"
	"fmt"
)

var (
	// ErrSave is returned when a document or node cannot be serialized.
	ErrSave = errors.New("failed to save document")
	// ErrNotLoaded is returned by operations that need a loaded document.
	ErrNotLoaded = errors.New("document has not been loaded")
	// ErrNoParent is returned when an operation needs a node's parent and it has none.
	ErrNoParent = errors.New("node has no parent")
	// ErrNotText is returned when a text node was expected.
	ErrNotText = errors.New("node is not a text node")
	// ErrInvalidTagName is returned for tag names that cannot name an element.
	ErrInvalidTagName = errors.New("invalid tag name")
	// ErrSearchNotFound is returned when the text to replace does not occur.
	ErrSearchNotFound = errors.New("search text not found")
	// ErrNoElement is returned when markup meant to hold an element holds none.
	ErrNoElement = errors.New("markup contains no element")
	// ErrFileTooLarge is returned when saved output exceeds the configured size limit.
	ErrFileTooLarge = errors.New("output exceeds size limit")
)

// NodeError adds node context to a structural error.
//
// Use [errors.Is] to test for the sentinel and [errors.As] for the context:
//
//	var nErr *htmldoc.NodeError
//	if errors.As(err, &nErr) {
//	    fmt.Println(nErr.Op, nErr.Tag)
//	}
type NodeError struct {
	// Op is the operation that failed, e.g. "replace".
	Op string
	// Tag is the element tag or node kind involved. May be empty.
	Tag string
	Err error
}

func (e *NodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Tag == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s <%s>: %v", e.Op, e.Tag, e.Err)
}

func (e *NodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
