// internal/node/clone.go
package node

// Clone deep-copies n. Children are owned exclusively by their parent
// (spec.md §3 Ownership), so sharing a subtree between two trees always
// goes through Clone rather than a shallow pointer copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Left = n.Left.Clone()
	c.Right = n.Right.Clone()
	c.TypeName = n.TypeName.Clone()
	c.TypeBody = n.TypeBody.Clone()
	c.Inner = n.Inner.Clone()
	if n.Items != nil {
		c.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			c.Items[i] = item.Clone()
		}
	}
	if n.Payload != nil {
		c.Payload = n.Payload.Clone()
	}
	return &c
}
