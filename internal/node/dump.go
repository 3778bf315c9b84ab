// internal/node/dump.go
package node

import "github.com/kr/pretty"

// Dump renders n as a multi-line, indented tree for debugging, using the
// kr/pretty formatter; cmd/warpc and the tests call it.
func Dump(n *Node) string {
	return pretty.Sprint(n)
}
