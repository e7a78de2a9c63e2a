package realization

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
)

// IntervalBalance holds the at-cost balances of one account in one bucket.
// Budget fields stay nil until budgets are merged in.
type IntervalBalance struct {
	Balance         *inventory.Balance
	BalanceChildren *inventory.Balance
	Budget          *inventory.Balance
	BudgetChildren  *inventory.Balance
}

// ZippedNode is an account with one IntervalBalance per bucket.
type ZippedNode struct {
	Account  string
	Balances []IntervalBalance
	Children []*ZippedNode
}

// Reducer turns an inventory into a currency balance.
type Reducer func(*inventory.Inventory) *inventory.Balance

var (
	// Units keeps positions in their own commodity.
	Units Reducer = (*inventory.Inventory).Units
	// AtCost values positions held at cost in their cost currency.
	AtCost Reducer = (*inventory.Inventory).AtCost
)

// Zip merges parallel trees (one per bucket) into a single tree. Children are
// the union of the children found in any bucket, in lexical order. A bucket
// lacking a node contributes empty balances. nodes may contain nil.
func Zip(name string, nodes []*Account, reduce Reducer) *ZippedNode {
	z := &ZippedNode{
		Account:  name,
		Balances: make([]IntervalBalance, len(nodes)),
	}
	leaves := map[string]bool{}
	for i, node := range nodes {
		if node == nil {
			z.Balances[i] = IntervalBalance{
				Balance:         inventory.NewBalance(),
				BalanceChildren: inventory.NewBalance(),
			}
			continue
		}
		z.Balances[i] = IntervalBalance{
			Balance:         reduce(node.Balance),
			BalanceChildren: reduce(node.ComputeBalance()),
		}
		for leaf := range node.Children {
			leaves[leaf] = true
		}
	}

	names := maps.Keys(leaves)
	slices.Sort(names)
	for _, leaf := range names {
		children := make([]*Account, len(nodes))
		for i, node := range nodes {
			if node != nil {
				children[i] = node.Children[leaf]
			}
		}
		childName := leaf
		if name != "" {
			childName = data.AccountJoin(name, leaf)
		}
		z.Children = append(z.Children, Zip(childName, children, reduce))
	}
	return z
}

// Accumulate turns per-bucket balances into running totals, so bucket i holds
// the sum of buckets 0..i.
func (z *ZippedNode) Accumulate() {
	for i := 1; i < len(z.Balances); i++ {
		prev, cur := z.Balances[i-1], &z.Balances[i]
		balance := prev.Balance.Copy()
		balance.Merge(cur.Balance)
		cur.Balance = balance
		children := prev.BalanceChildren.Copy()
		children.Merge(cur.BalanceChildren)
		cur.BalanceChildren = children
	}
	for _, child := range z.Children {
		child.Accumulate()
	}
}

// Walk calls fn for the node and every descendant in pre-order.
func (z *ZippedNode) Walk(fn func(*ZippedNode)) {
	if z == nil {
		return
	}
	fn(z)
	for _, child := range z.Children {
		child.Walk(fn)
	}
}

// Find returns the descendant node for account, or nil.
func (z *ZippedNode) Find(account string) *ZippedNode {
	var found *ZippedNode
	z.Walk(func(n *ZippedNode) {
		if found == nil && n.Account == account {
			found = n
		}
	})
	return found
}
