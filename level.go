package zstream

// Level is the effort the deflate engine spends trading speed for
// density. The named constants mirror the conventional deflate levels;
// any value between HuffmanOnly and BestCompression is accepted.
type Level int

const (
	NoCompression      Level = 0
	BestSpeed          Level = 1
	BestCompression    Level = 9
	DefaultCompression Level = -1

	// HuffmanOnly entropy-codes the input without searching for string
	// matches. It is the fastest setting that still shrinks text.
	HuffmanOnly Level = -2
)

func (l Level) valid() bool { return l >= HuffmanOnly && l <= BestCompression }
