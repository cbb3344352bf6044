package reassembly

// tcpFragment is a buffered out-of-order payload waiting for the gap
// before it to close. Fragments own their bytes.
type tcpFragment struct {
	seq  uint32
	data []byte
}

func (f *tcpFragment) end() uint32 {
	return f.seq + uint32(len(f.data))
}

// fragmentStore is the per-direction ordered collection of buffered
// out-of-order segments. Insertion order is preserved; it is never sorted,
// because the drain scan restarts after every delivery and only needs an
// exact match, not ordering.
type fragmentStore struct {
	frags []*tcpFragment
}

func (fs *fragmentStore) insert(f *tcpFragment) {
	fs.frags = append(fs.frags, f)
}

func (fs *fragmentStore) empty() bool {
	return len(fs.frags) == 0
}

func (fs *fragmentStore) removeAt(i int) *tcpFragment {
	f := fs.frags[i]
	fs.frags = append(fs.frags[:i], fs.frags[i+1:]...)
	return f
}
