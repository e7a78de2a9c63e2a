package realization

import "github.com/robinvdvleuten/beanreport/inventory"

// TreeNode is a realized account reduced to at-cost balances, as shown in
// balance sheets and trial balances.
type TreeNode struct {
	Account         string
	Balance         *inventory.Balance
	BalanceChildren *inventory.Balance
	// HasTransactions is true when a posting is booked directly to the account.
	HasTransactions bool
	Children        []*TreeNode
}

// Serialize converts the subtree rooted at a. A nil account yields nil.
func Serialize(a *Account) *TreeNode {
	if a == nil {
		return nil
	}
	node := &TreeNode{
		Account:         a.Name,
		Balance:         a.Balance.AtCost(),
		BalanceChildren: a.ComputeBalance().AtCost(),
	}
	for _, item := range a.Items {
		if item.Posting != nil {
			node.HasTransactions = true
			break
		}
	}
	for _, child := range a.SortedChildren() {
		node.Children = append(node.Children, Serialize(child))
	}
	return node
}

// Walk calls fn for the node and every descendant in pre-order.
func (n *TreeNode) Walk(fn func(*TreeNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}
