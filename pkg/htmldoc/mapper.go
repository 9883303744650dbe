package htmldoc

import "golang.org/x/net/html"

// MapFunc inspects a node during MapRecursive. It returns the node to keep
// in its place: the node itself, a replacement, or nil to leave the node
// as it is and skip its subtree.
type MapFunc func(n *html.Node) *html.Node

// MapRecursive walks node's subtree calling fn once for every node.
//
// For each child, taken from a snapshot made before any callback runs, fn
// decides what happens: a different node replaces the child at the same
// position, nil skips the child's subtree. The walk then continues into the
// children of whatever now sits at that position. Finally fn runs on node
// itself and MapRecursive returns its result, or node when fn returns nil.
func MapRecursive(node *html.Node, fn MapFunc) *html.Node {
	if node == nil {
		return nil
	}

	mapChildren(node, fn)

	if out := fn(node); out != nil {
		return out
	}
	return node
}

func mapChildren(node *html.Node, fn MapFunc) {
	var children []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	for _, child := range children {
		// An earlier callback moved it elsewhere.
		if child.Parent != node {
			continue
		}

		next := fn(child)
		if next == nil {
			continue
		}

		if next != child {
			if NodeContains(next, node) {
				continue
			}
			detach(next)
			node.InsertBefore(next, child)
			node.RemoveChild(child)
		}

		mapChildren(next, fn)
	}
}
