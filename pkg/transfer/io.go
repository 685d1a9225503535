package transfer

import (
	"context"
	"io"
)

// chunkReader feeds an upload in bounded slices. Each read first checks the
// job context so a cancelled upload stops within one chunk.
type chunkReader struct {
	ctx     context.Context
	r       io.Reader
	onChunk func(n int64)
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) > ChunkSize {
		p = p[:ChunkSize]
	}
	n, err := c.r.Read(p)
	if n > 0 && c.onChunk != nil {
		c.onChunk(int64(n))
	}
	return n, err
}

// chunkWriter drains a download in bounded slices with the same per-chunk
// cancellation check.
type chunkWriter struct {
	ctx     context.Context
	w       io.Writer
	onChunk func(n int64)
}

func (c *chunkWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		if err := c.ctx.Err(); err != nil {
			return written, err
		}
		end := written + ChunkSize
		if end > len(p) {
			end = len(p)
		}
		n, err := c.w.Write(p[written:end])
		written += n
		if n > 0 && c.onChunk != nil {
			c.onChunk(int64(n))
		}
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
