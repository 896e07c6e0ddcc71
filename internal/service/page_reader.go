package service

import (
	"context"
	"fmt"
	"time"

	"pdf-extract-server/internal/domain"
)

type pageResult struct {
	text string
	err  error
}

// pageReader runs one page read at a time under a deadline. A read that
// outlives its deadline keeps running; the document must stay open until it
// returns, so release waits for it before freeing the document.
type pageReader struct {
	timeout time.Duration
	pending chan pageResult
}

func newPageReader(timeout time.Duration) *pageReader {
	return &pageReader{timeout: timeout}
}

func (p *pageReader) read(ctx context.Context, page int, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resultCh := make(chan pageResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- pageResult{err: fmt.Errorf("panic reading page: %v", r)}
			}
		}()
		text, err := fn()
		resultCh <- pageResult{text: text, err: err}
	}()

	var deadline <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case res := <-resultCh:
		if res.err != nil {
			return "", &domain.ExtractionError{Reason: domain.ReasonCorrupt, Page: page, Cause: res.err}
		}
		return res.text, nil
	case <-deadline:
		p.pending = resultCh
		return "", &domain.ExtractionError{
			Reason: domain.ReasonTimeout,
			Page:   page,
			Cause:  fmt.Errorf("timeout after %v", p.timeout),
		}
	case <-ctx.Done():
		p.pending = resultCh
		return "", ctx.Err()
	}
}

// release frees the document once no read is in flight.
func (p *pageReader) release(free func()) {
	if p.pending == nil {
		free()
		return
	}
	pending := p.pending
	go func() {
		<-pending
		free()
	}()
}
