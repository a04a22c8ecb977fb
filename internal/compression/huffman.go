package compression

import (
	"container/heap"
	"encoding/binary"
)

// Record layout: [treeLen u64][bitCount u64][padding u8][tree][packed bits].
const huffmanHeaderSize = 17

// maxTreeDepth bounds a tree built from at most 256 distinct symbols.
const maxTreeDepth = 256

// Huffman builds prefix codes from byte frequencies and stores the tree
// alongside the MSB-first packed bitstream.
type Huffman struct{}

// Name returns "Huffman".
func (Huffman) Name() string { return "Huffman" }

type huffNode struct {
	freq  int
	seq   int
	sym   byte
	leaf  bool
	left  *huffNode
	right *huffNode
}

// huffQueue orders by frequency, then by creation order so equal
// frequencies always merge the same way.
type huffQueue []*huffNode

func (q huffQueue) Len() int { return len(q) }
func (q huffQueue) Less(i, j int) bool {
	if q[i].freq != q[j].freq {
		return q[i].freq < q[j].freq
	}
	return q[i].seq < q[j].seq
}
func (q huffQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *huffQueue) Push(x any)   { *q = append(*q, x.(*huffNode)) }
func (q *huffQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// Compress encodes data with a tree built from its own byte frequencies.
func (h Huffman) Compress(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	root := buildTree(data)
	var codes [256][]byte
	assignCodes(root, nil, &codes)
	tree := writeTree(root, nil)

	var bits uint64
	for _, b := range data {
		bits += uint64(len(codes[b]))
	}

	out := make([]byte, huffmanHeaderSize+len(tree)+int((bits+7)/8))
	binary.LittleEndian.PutUint64(out[0:], uint64(len(tree)))
	binary.LittleEndian.PutUint64(out[8:], bits)
	out[16] = byte((8 - bits%8) % 8)
	copy(out[huffmanHeaderSize:], tree)

	packed := out[huffmanHeaderSize+len(tree):]
	var pos uint64
	for _, b := range data {
		for _, bit := range codes[b] {
			if bit == 1 {
				packed[pos/8] |= 0x80 >> (pos % 8)
			}
			pos++
		}
	}

	return pick(h, data, out)
}

// Decompress decodes a Huffman record. Anything whose header, tree, or
// bit count does not line up exactly is returned unchanged.
func (Huffman) Decompress(data []byte) []byte {
	if len(data) < huffmanHeaderSize {
		return data
	}

	treeLen := binary.LittleEndian.Uint64(data[0:])
	bits := binary.LittleEndian.Uint64(data[8:])
	padding := data[16]
	rest := data[huffmanHeaderSize:]

	if treeLen == 0 || treeLen > uint64(len(rest)) {
		return data
	}
	tree, packed := rest[:treeLen], rest[treeLen:]
	if bits == 0 || bits > uint64(len(packed))*8 || uint64(len(packed)) != (bits+7)/8 {
		return data
	}
	if padding != byte((8-bits%8)%8) {
		return data
	}

	pos := 0
	root, ok := readTree(tree, &pos, 0)
	if !ok || pos != len(tree) {
		return data
	}

	bit := func(i uint64) bool { return packed[i/8]&(0x80>>(i%8)) != 0 }

	// A single-symbol tree has a leaf root; every code is one 0 bit.
	if root.leaf {
		out := make([]byte, 0, bits)
		for i := uint64(0); i < bits; i++ {
			if bit(i) {
				return data
			}
			out = append(out, root.sym)
		}
		return out
	}

	out := make([]byte, 0, len(packed)*2)
	n := root
	for i := uint64(0); i < bits; i++ {
		if bit(i) {
			n = n.right
		} else {
			n = n.left
		}
		if n.leaf {
			out = append(out, n.sym)
			n = root
		}
	}
	if n != root {
		return data
	}
	return out
}

func buildTree(data []byte) *huffNode {
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	q := &huffQueue{}
	seq := 0
	for sym, f := range freq {
		if f == 0 {
			continue
		}
		*q = append(*q, &huffNode{freq: f, seq: seq, sym: byte(sym), leaf: true})
		seq++
	}
	heap.Init(q)

	for q.Len() > 1 {
		left := heap.Pop(q).(*huffNode)
		right := heap.Pop(q).(*huffNode)
		heap.Push(q, &huffNode{freq: left.freq + right.freq, seq: seq, left: left, right: right})
		seq++
	}
	return heap.Pop(q).(*huffNode)
}

// assignCodes walks the tree pre-order: 0 for left, 1 for right.
func assignCodes(n *huffNode, prefix []byte, codes *[256][]byte) {
	if n.leaf {
		if len(prefix) == 0 {
			prefix = []byte{0}
		}
		codes[n.sym] = append([]byte(nil), prefix...)
		return
	}
	assignCodes(n.left, append(prefix, 0), codes)
	assignCodes(n.right, append(prefix, 1), codes)
}

// writeTree serializes leaves as '1' + symbol and internal nodes as '0'
// followed by both subtrees.
func writeTree(n *huffNode, out []byte) []byte {
	if n.leaf {
		return append(out, '1', n.sym)
	}
	out = append(out, '0')
	out = writeTree(n.left, out)
	return writeTree(n.right, out)
}

func readTree(buf []byte, pos *int, depth int) (*huffNode, bool) {
	if *pos >= len(buf) || depth > maxTreeDepth {
		return nil, false
	}

	marker := buf[*pos]
	*pos++

	switch marker {
	case '1':
		if *pos >= len(buf) {
			return nil, false
		}
		n := &huffNode{leaf: true, sym: buf[*pos]}
		*pos++
		return n, true
	case '0':
		left, ok := readTree(buf, pos, depth+1)
		if !ok {
			return nil, false
		}
		right, ok := readTree(buf, pos, depth+1)
		if !ok {
			return nil, false
		}
		return &huffNode{left: left, right: right}, true
	default:
		return nil, false
	}
}
