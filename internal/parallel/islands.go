package parallel

import "sort"

// Islands partitions body ids into connected components of the contact
// graph. Bodies in different islands share no contact, directly or
// transitively, so their responses can run concurrently; within an island
// resolution must stay sequential.
//
// Output is deterministic: islands are ordered by their smallest member and
// members are ascending.
func Islands(ids []int, edges [][2]int) [][]int {
	parent := make(map[int]int, len(ids))
	for _, id := range ids {
		parent[id] = id
	}

	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]] // path halving
			x = parent[x]
		}
		return x
	}

	for _, e := range edges {
		if _, ok := parent[e[0]]; !ok {
			continue // edge references a body not in the scene
		}
		if _, ok := parent[e[1]]; !ok {
			continue
		}
		a, b := find(e[0]), find(e[1])
		if a != b {
			if a > b {
				a, b = b, a
			}
			parent[b] = a
		}
	}

	groups := make(map[int][]int)
	for _, id := range ids {
		root := find(id)
		groups[root] = append(groups[root], id)
	}

	roots := make([]int, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	out := make([][]int, 0, len(groups))
	for _, root := range roots {
		members := groups[root]
		sort.Ints(members)
		out = append(out, members)
	}
	return out
}
