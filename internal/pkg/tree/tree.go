// Package tree assembles flat parent-linked records into a forest.
package tree

// Node 树节点
type Node[T any] struct {
	Value    T
	Children []*Node[T]
}

// Build 两次顺序遍历构建森林。
//
// parent 返回 false 表示根节点。父节点不在输入中的记录被丢弃，
// 其后代也因挂在不可达节点下而不会出现在结果中。
// 子节点顺序与输入顺序一致，深度不限。
func Build[T any, K comparable](items []T, id func(T) K, parent func(T) (K, bool)) []*Node[T] {
	index := make(map[K]*Node[T], len(items))
	for _, item := range items {
		index[id(item)] = &Node[T]{Value: item, Children: []*Node[T]{}}
	}

	roots := make([]*Node[T], 0)
	for _, item := range items {
		node := index[id(item)]
		pid, ok := parent(item)
		if !ok {
			roots = append(roots, node)
			continue
		}
		if p, found := index[pid]; found {
			p.Children = append(p.Children, node)
		}
	}
	return roots
}

// Count 统计森林中的节点总数
func Count[T any](roots []*Node[T]) int {
	n := 0
	Walk(roots, func(*Node[T], int) { n++ })
	return n
}

// Walk 先序遍历，depth 从 1 开始
func Walk[T any](roots []*Node[T], fn func(node *Node[T], depth int)) {
	var visit func(nodes []*Node[T], depth int)
	visit = func(nodes []*Node[T], depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(roots, 1)
}
