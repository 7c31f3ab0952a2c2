package ast

// Clone returns a deep copy of n, detached from any parent. Mutating the
// copy leaves the original untouched.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.parent = nil
	c.Children = cloneList(n.Children)
	c.Args = cloneList(n.Args)
	c.Declarators = cloneList(n.Declarators)
	c.Cond = Clone(n.Cond)
	c.Then = Clone(n.Then)
	c.Else = Clone(n.Else)
	c.Init = Clone(n.Init)
	c.Post = Clone(n.Post)
	c.Body = Clone(n.Body)
	c.Left = Clone(n.Left)
	c.Right = Clone(n.Right)
	c.X = Clone(n.X)
	c.Test = Clone(n.Test)
	c.Param = Clone(n.Param)
	c.CatchClause = Clone(n.CatchClause)
	c.FinallyBody = Clone(n.FinallyBody)
	if n.Suppressions != nil {
		c.Suppressions = append([]string(nil), n.Suppressions...)
	}
	if n.Params != nil {
		c.Params = append([]string(nil), n.Params...)
	}
	return (&c).link()
}

func cloneList(list []*Node) []*Node {
	if list == nil {
		return nil
	}
	out := make([]*Node, len(list))
	for i, n := range list {
		out[i] = Clone(n)
	}
	return out
}
