package web

import (
	"bufio"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// peekBuffer bounds how far into the body the ref peek may look. The
// first receive-pack line is two object ids, a ref name, and the
// capability list, which fits comfortably.
const peekBuffer = 1024

// peekPushRef reads the first pkt-line of a receive-pack request body
// without consuming it and extracts the old sha, new sha, and ref name.
// The body is rewrapped so the downstream handler sees it untouched.
// Compressed bodies are left alone; the peek is best effort and a push
// with no usable first line simply yields no ref metadata.
func peekPushRef(r *http.Request) (oldSha, newSha, ref string, ok bool) {
	if r.Body == nil || r.Header.Get("Content-Encoding") != "" {
		return "", "", "", false
	}

	br := bufio.NewReaderSize(r.Body, peekBuffer)
	r.Body = peekedBody{Reader: br, closer: r.Body}

	head, err := br.Peek(4)
	if err != nil {
		return "", "", "", false
	}

	n, err := strconv.ParseUint(string(head), 16, 16)
	if err != nil || n < 4 || n > peekBuffer {
		return "", "", "", false
	}

	line, err := br.Peek(int(n))
	if err != nil {
		return "", "", "", false
	}

	// The capability list follows a NUL after the ref name.
	payload := string(line[4:])
	if i := strings.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}

	fields := strings.Fields(payload)
	if len(fields) < 3 {
		return "", "", "", false
	}

	return fields[0], fields[1], fields[2], true
}

type peekedBody struct {
	io.Reader
	closer io.Closer
}

func (b peekedBody) Close() error {
	return b.closer.Close()
}
