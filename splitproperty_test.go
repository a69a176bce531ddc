package httpwire

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// splitFeeder is the common shape RequestParser and ResponseParser both
// satisfy, letting the property test below drive either one without caring
// which.
type splitFeeder interface {
	Feed(buf []byte, offs int) (int, *Error)
	Done() bool
	Err() *Error
}

// feedInChunks drives p over full, each call seeing only as much of full as
// chunkSizes has accumulated so far -- the append-only-buffer resumption
// contract every parser entry point promises. It stops once p reports Done
// (an informational-response reset still counts as "the message completed"
// here since none of the corpus below uses 1xx).
func feedInChunks(t *testing.T, p splitFeeder, full []byte, chunkSizes []int) {
	t.Helper()
	offs := 0
	end := 0
	for _, sz := range chunkSizes {
		end += sz
		if end > len(full) {
			end = len(full)
		}
		next, err := p.Feed(full[:end], offs)
		require.Nil(t, err, "unexpected error with chunk sizes %v", chunkSizes)
		offs = next
		if p.Done() {
			return
		}
		if end >= len(full) {
			break
		}
	}
	require.True(t, p.Done(), "message never completed with chunk sizes %v", chunkSizes)
}

// splitPartitions returns the three partition families the split-insensitivity
// property exercises: every 1-byte split, every 2-byte split, and a handful
// of pseudo-random partitions (fixed seed, for a reproducible test run).
func splitPartitions(total int, rnd *rand.Rand) [][]int {
	ones := make([]int, total)
	for i := range ones {
		ones[i] = 1
	}
	twos := make([]int, 0, total/2+1)
	for left := total; left > 0; {
		n := 2
		if n > left {
			n = left
		}
		twos = append(twos, n)
		left -= n
	}
	partitions := [][]int{ones, twos}
	for r := 0; r < 5; r++ {
		var part []int
		left := total
		for left > 0 {
			n := 1 + rnd.Intn(left)
			part = append(part, n)
			left -= n
		}
		partitions = append(partitions, part)
	}
	return partitions
}

func TestRequestParserSplitInsensitivity(t *testing.T) {
	corpus := []struct {
		name string
		raw  []byte
	}{
		{"simple-get", []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n")},
		{"post-with-length", []byte("POST /submit HTTP/1.1\r\nHost: example.com\r\nContent-Length: 11\r\n\r\nhello world")},
		{"chunked-with-trailer", []byte("POST /up HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"4\r\nWiki\r\n5\r\npedia\r\n0\r\nX-Checksum: abc\r\n\r\n")},
		{"many-headers", []byte("GET /x HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\nUser-Agent: test\r\nX-Foo: bar\r\n\r\n")},
	}

	rnd := rand.New(rand.NewSource(1))
	for _, c := range corpus {
		for i, sizes := range splitPartitions(len(c.raw), rnd) {
			p := NewRequestParser(nil, nil)
			feedInChunks(t, p, c.raw, sizes)
			require.Truef(t, p.Done(), "%s partition #%d", c.name, i)
		}
	}
}

func TestResponseParserSplitInsensitivity(t *testing.T) {
	corpus := []struct {
		name string
		raw  []byte
	}{
		{"simple-ok", []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")},
		{"chunked-with-trailer", []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"4\r\nWiki\r\n5\r\npedia\r\n0\r\nX-Checksum: abc\r\n\r\n")},
		{"no-content-204", []byte("HTTP/1.1 204 No Content\r\n\r\n")},
	}

	rnd := rand.New(rand.NewSource(2))
	for _, c := range corpus {
		for i, sizes := range splitPartitions(len(c.raw), rnd) {
			p := NewResponseParser(nil, nil)
			feedInChunks(t, p, c.raw, sizes)
			require.Truef(t, p.Done(), "%s partition #%d", c.name, i)
		}
	}
}
