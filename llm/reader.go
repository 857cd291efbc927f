package llm

import (
	"context"
	"io"
	"iter"
	"strings"
)

// Chunks yields the content of one reply in arrival order, whichever way the
// adapter delivers it. With streaming off the whole reply arrives as a single
// chunk from Send; with streaming on each StreamChunk is yielded as it comes.
// An error is yielded at most once and ends the sequence.
func Chunks(ctx context.Context, adapter LLMAdapter, messages []Message, streaming bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !streaming {
			msg, err := adapter.Send(ctx, messages)
			if err != nil {
				yield("", err)
				return
			}
			if msg.Content != "" {
				yield(msg.Content, nil)
			}
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		chunks := make(chan StreamChunk)
		errc := make(chan error, 1)
		go func() {
			errc <- adapter.Stream(ctx, messages, chunks)
		}()
		defer func() {
			// Unblock the producer and wait for it to close the channel.
			cancel()
			for range chunks {
			}
		}()

		for chunk := range chunks {
			if chunk.Error != nil {
				yield("", chunk.Error)
				return
			}
			if chunk.Content != "" && !yield(chunk.Content, nil) {
				return
			}
			if chunk.Done {
				return
			}
		}

		if err := <-errc; err != nil {
			yield("", err)
		}
	}
}

// Collect drains Chunks into a single string, echoing every chunk to echo
// when it is non-nil. On error the content received so far is returned with it.
func Collect(ctx context.Context, adapter LLMAdapter, messages []Message, streaming bool, echo io.Writer) (string, error) {
	var content strings.Builder
	for chunk, err := range Chunks(ctx, adapter, messages, streaming) {
		if err != nil {
			return content.String(), err
		}
		content.WriteString(chunk)
		if echo != nil {
			_, _ = io.WriteString(echo, chunk)
		}
	}
	return content.String(), nil
}
