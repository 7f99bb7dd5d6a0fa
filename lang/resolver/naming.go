package resolver

// nameBlocks assigns a unique, stable name to every scope block created
// during the last chunk() call, for debugging/dumping purposes: the root is
// "_", each child appends a letter to its parent's name. The chunk's root
// block has already been popped off r.env by the time this runs, so it is
// reached through r.root instead.
func (r *resolver) nameBlocks() {
	if r.root != nil {
		nameBlock(r.root)
	}
}

func nameBlock(b *block) {
	if b.parent == nil {
		b.name = "_"
	}
	for i, cb := range b.children {
		cb.name = b.name + letterFor(i)
		nameBlock(cb)
	}
}

func letterFor(i int) string {
	if i < 26 {
		return string(rune(i) + 'a')
	}
	if i < 52 {
		return string(rune(i-26) + 'A')
	}
	return "?"
}
